package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/codeversity/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSubscriptionRequired = errors.New("active subscription required")
	ErrQuotaExceeded        = errors.New("AI query limit reached")
)

// EntitlementService is the read side of the membership ledger: gated
// features ask it whether a user may act, and it spends quota counters.
type EntitlementService struct {
	db *gorm.DB
}

func NewEntitlementService(db *gorm.DB) *EntitlementService {
	return &EntitlementService{db: db}
}

// Check resolves the caller's membership and applies the lazy entitlement
// predicate. An active-status row with a past expiry is denied here; nothing
// ever flips the stored status ahead of time.
func (s *EntitlementService) Check(userID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	if err := s.db.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionRequired
		}
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}
	if !membership.IsEntitled(time.Now()) {
		return nil, ErrSubscriptionRequired
	}
	return &membership, nil
}

// ConsumeAIQuery spends one query from the caller's quota. The conditional
// UPDATE makes concurrent consumers safe: zero affected rows means the quota
// ran out between check and spend.
func (s *EntitlementService) ConsumeAIQuery(userID uuid.UUID) (*models.Membership, error) {
	membership, err := s.Check(userID)
	if err != nil {
		return nil, err
	}
	if !membership.HasAIQuota() {
		return nil, ErrQuotaExceeded
	}

	query := s.db.Model(&models.Membership{}).
		Where("id = ? AND status = ?", membership.ID, models.MembershipStatusActive)
	if membership.AIUsageLimit != -1 {
		query = query.Where("ai_usage_count < ai_usage_limit")
	}

	result := query.UpdateColumn("ai_usage_count", gorm.Expr("ai_usage_count + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to consume AI quota: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrQuotaExceeded
	}

	membership.AIUsageCount++
	return membership, nil
}

// ResetAIUsage zeroes the usage counter (billing-period reset, admin action).
func (s *EntitlementService) ResetAIUsage(userID uuid.UUID) error {
	return s.db.Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Update("ai_usage_count", 0).Error
}
