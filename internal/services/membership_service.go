package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/codeversity/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrPaymentNotCompleted = errors.New("payment is not completed")
	ErrPaidPlanUpgrade     = errors.New("paid plans must go through checkout")
)

type MembershipService struct {
	db    *gorm.DB
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// userLock returns the per-user mutex serializing membership writes. Two
// concurrent verifications for the same user would otherwise race on the
// single ledger row. Entries are never evicted; the map is bounded by the
// number of paying users seen since boot.
func (s *MembershipService) userLock(userID uuid.UUID) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *MembershipService) Get(userID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	if err := s.db.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}
	return &membership, nil
}

// computeExpiry returns the expiry of a plan applied at now on top of an
// existing membership. A still-entitled membership renews additively: the new
// duration stacks on the current expiry, so renewing 5 days early keeps those
// 5 days. An expired or absent membership starts fresh from now. Lifetime
// plans, and renewals on top of an active non-expiring membership, yield nil.
func computeExpiry(currentExpiry *time.Time, currentEntitled bool, now time.Time, duration int, durationType string) *time.Time {
	if durationType == models.DurationLifetime {
		return nil
	}
	if currentEntitled && currentExpiry == nil {
		return nil
	}

	base := now
	if currentEntitled && currentExpiry.After(now) {
		base = *currentExpiry
	}

	var expiry time.Time
	switch durationType {
	case models.DurationDay:
		expiry = base.AddDate(0, 0, duration)
	case models.DurationYear:
		expiry = base.AddDate(duration, 0, 0)
	default:
		expiry = base.AddDate(0, duration, 0)
	}
	return &expiry
}

// Activate applies a completed payment to the user's membership ledger. The
// AppliedAt flag makes re-runs idempotent: webhook plus browser verification
// plus the reconciler may each attempt the same payment, and only the first
// one extends the expiry.
func (s *MembershipService) Activate(payment *models.Payment, plan *models.Plan) (*models.Membership, error) {
	if payment.Status != models.PaymentStatusCompleted {
		return nil, ErrPaymentNotCompleted
	}

	lock := s.userLock(payment.UserID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a concurrent caller may have applied it already.
	var fresh models.Payment
	if err := s.db.First(&fresh, "id = ?", payment.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload payment: %w", err)
	}
	if fresh.AppliedAt != nil {
		return s.Get(fresh.UserID)
	}

	now := time.Now()
	membership, err := s.upsert(fresh.UserID, plan, func(current *models.Membership, entitled bool) *time.Time {
		var currentExpiry *time.Time
		if current != nil {
			currentExpiry = current.ExpiryDate
		}
		return computeExpiry(currentExpiry, entitled, now, plan.Duration, plan.DurationType)
	}, func(tx *gorm.DB, m *models.Membership) error {
		result := tx.Model(&models.Payment{}).
			Where("id = ? AND applied_at IS NULL", fresh.ID).
			Updates(map[string]interface{}{
				"membership_id": m.ID,
				"applied_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.New("payment already applied")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// ActivateFree puts the user on a zero-price plan directly, without a payment
// row or any gateway interaction. Free memberships don't expire until the
// user moves to another plan.
func (s *MembershipService) ActivateFree(userID uuid.UUID, plan *models.Plan) (*models.Membership, error) {
	if !plan.IsFree() {
		return nil, ErrPaidPlanUpgrade
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.upsert(userID, plan, func(*models.Membership, bool) *time.Time {
		return nil
	}, nil)
}

// upsert writes the single membership row for a user inside one transaction:
// plan slug and feature/quota snapshot, fresh usage counter, recomputed
// expiry, plus the cached membership id on the user row. link, when set, runs
// in the same transaction (used to stamp the originating payment).
func (s *MembershipService) upsert(
	userID uuid.UUID,
	plan *models.Plan,
	expiryFor func(current *models.Membership, entitled bool) *time.Time,
	link func(tx *gorm.DB, m *models.Membership) error,
) (*models.Membership, error) {
	var membership models.Membership
	err := s.db.Where("user_id = ?", userID).First(&membership).Error
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}

	now := time.Now()
	var current *models.Membership
	entitled := false
	if exists {
		current = &membership
		entitled = membership.IsEntitled(now)
	}
	expiry := expiryFor(current, entitled)

	if !exists {
		membership = models.Membership{ID: uuid.New(), UserID: userID}
	}
	membership.PlanType = plan.Slug
	membership.Status = models.MembershipStatusActive
	membership.ExpiryDate = expiry
	membership.AIUsageLimit = plan.AIQueryLimit
	membership.AIUsageCount = 0
	if err := membership.SetFeatureTitles(plan.IncludedFeatureTitles()); err != nil {
		return nil, fmt.Errorf("failed to snapshot plan features: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&membership).Error; err != nil {
			return fmt.Errorf("failed to save membership: %w", err)
		}
		if link != nil {
			if err := link(tx, &membership); err != nil {
				return err
			}
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("membership_id", membership.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Cancel marks the membership cancelled. The row is kept; history survives.
func (s *MembershipService) Cancel(userID uuid.UUID) (*models.Membership, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	membership, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(membership).Update("status", models.MembershipStatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel membership: %w", err)
	}
	membership.Status = models.MembershipStatusCancelled
	return membership, nil
}
