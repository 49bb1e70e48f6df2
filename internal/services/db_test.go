package services

import (
	"fmt"
	"testing"

	"github.com/codeversity/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory SQLite database. The Postgres-specific
// column defaults in the model tags (gen_random_uuid) don't translate, so the
// schema is created by hand; ids are always assigned in Go anyway.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			password TEXT NOT NULL,
			name TEXT,
			role TEXT DEFAULT 'user',
			membership_id TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE plans (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			description TEXT,
			price REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'INR',
			duration INTEGER NOT NULL DEFAULT 1,
			duration_type TEXT NOT NULL DEFAULT 'month',
			features TEXT DEFAULT '[]',
			ai_query_limit INTEGER NOT NULL DEFAULT 0,
			is_popular NUMERIC DEFAULT false,
			is_active NUMERIC DEFAULT true,
			display_order INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE payments (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			plan_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			method TEXT NOT NULL,
			gateway_order_id TEXT,
			gateway_payment_id TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			metadata TEXT DEFAULT '{}',
			membership_id TEXT,
			applied_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE memberships (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			plan_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			features TEXT DEFAULT '[]',
			ai_usage_limit INTEGER NOT NULL DEFAULT 0,
			ai_usage_count INTEGER NOT NULL DEFAULT 0,
			expiry_date DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE settings (
			id TEXT PRIMARY KEY,
			key TEXT NOT NULL UNIQUE,
			value TEXT NOT NULL,
			type TEXT DEFAULT 'string',
			created_at DATETIME,
			updated_at DATETIME
		)`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password: "hashed",
		Name:     "Test User",
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func seedPaidPlan(t *testing.T, db *gorm.DB) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		ID:           uuid.New(),
		Name:         "Pro Monthly",
		Slug:         "pro-monthly",
		Price:        499,
		Currency:     "INR",
		Duration:     30,
		DurationType: models.DurationDay,
		AIQueryLimit: 100,
		IsActive:     true,
	}
	require.NoError(t, plan.SetFeatures([]models.PlanFeature{
		{Title: "All courses", Included: true},
		{Title: "AI tutor", Included: true},
	}))
	require.NoError(t, db.Create(plan).Error)
	return plan
}
