package database

import (
	"log/slog"

	"github.com/codeversity/backend/internal/models"
	"github.com/google/uuid"
)

// SeedPlans inserts the default catalog on an empty plans table. Existing
// deployments keep whatever the admin panel has configured.
func SeedPlans() error {
	var count int64
	if err := DB.Model(&models.Plan{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		plan     models.Plan
		features []models.PlanFeature
	}{
		{
			plan: models.Plan{
				ID: uuid.New(), Name: "Free", Slug: "free",
				Description:  "Get started with the basics",
				Price:        0, Currency: "INR",
				Duration: 0, DurationType: models.DurationLifetime,
				AIQueryLimit: 0, DisplayOrder: 1,
			},
			features: []models.PlanFeature{
				{Title: "Free courses", Included: true},
				{Title: "Community access", Included: true},
				{Title: "AI tutor", Included: false},
			},
		},
		{
			plan: models.Plan{
				ID: uuid.New(), Name: "Pro Monthly", Slug: "pro-monthly",
				Description:  "Full access, billed monthly",
				Price:        499, Currency: "INR",
				Duration: 1, DurationType: models.DurationMonth,
				AIQueryLimit: 100, IsPopular: true, DisplayOrder: 2,
			},
			features: []models.PlanFeature{
				{Title: "All courses", Included: true},
				{Title: "Certificates", Included: true},
				{Title: "AI tutor (100 queries/period)", Included: true},
			},
		},
		{
			plan: models.Plan{
				ID: uuid.New(), Name: "Lifetime", Slug: "lifetime",
				Description:  "Pay once, learn forever",
				Price:        9999, Currency: "INR",
				Duration: 0, DurationType: models.DurationLifetime,
				AIQueryLimit: -1, DisplayOrder: 3,
			},
			features: []models.PlanFeature{
				{Title: "All courses", Included: true},
				{Title: "Certificates", Included: true},
				{Title: "Unlimited AI tutor", Included: true},
			},
		},
	}

	for _, d := range defaults {
		plan := d.plan
		plan.IsActive = true
		if err := plan.SetFeatures(d.features); err != nil {
			return err
		}
		if err := DB.Create(&plan).Error; err != nil {
			return err
		}
	}

	slog.Info("seeded default plans", "count", len(defaults))
	return nil
}
