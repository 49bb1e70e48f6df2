package services

import (
	"testing"
	"time"

	"github.com/codeversity/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeExpiryFreshActivation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	expiry := computeExpiry(nil, false, now, 30, models.DurationDay)
	require.NotNil(t, expiry)
	assert.Equal(t, now.AddDate(0, 0, 30), *expiry)

	expiry = computeExpiry(nil, false, now, 1, models.DurationMonth)
	require.NotNil(t, expiry)
	assert.Equal(t, now.AddDate(0, 1, 0), *expiry)

	expiry = computeExpiry(nil, false, now, 2, models.DurationYear)
	require.NotNil(t, expiry)
	assert.Equal(t, now.AddDate(2, 0, 0), *expiry)
}

// Renewing 10 days before expiry stacks the new duration on top of the
// current expiry instead of restarting from now.
func TestComputeExpiryAdditiveRenewal(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := now.AddDate(0, 0, 10)

	expiry := computeExpiry(&current, true, now, 30, models.DurationDay)
	require.NotNil(t, expiry)
	assert.Equal(t, now.AddDate(0, 0, 40), *expiry)
}

// An expired membership does not donate its stale expiry as the base.
func TestComputeExpiryAfterExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lapsed := now.AddDate(0, 0, -5)

	expiry := computeExpiry(&lapsed, false, now, 30, models.DurationDay)
	require.NotNil(t, expiry)
	assert.Equal(t, now.AddDate(0, 0, 30), *expiry)
}

func TestComputeExpiryLifetime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Buying a lifetime plan yields a non-expiring membership.
	assert.Nil(t, computeExpiry(nil, false, now, 1, models.DurationLifetime))

	// A timed purchase on top of an active non-expiring membership does not
	// downgrade it to a dated expiry.
	assert.Nil(t, computeExpiry(nil, true, now, 1, models.DurationMonth))
}

// Activation re-runs must be no-ops: the same inputs always produce the same
// expiry, and the AppliedAt guard keeps the second run from reaching the
// computation at all. This pins down the arithmetic half of that contract.
func TestComputeExpiryDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := now.AddDate(0, 0, 10)

	first := computeExpiry(&current, true, now, 30, models.DurationDay)
	second := computeExpiry(&current, true, now, 30, models.DurationDay)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

// The AppliedAt guard: re-running Activate for a payment that already extended
// the ledger must not extend it a second time.
func TestActivateAppliesPaymentOnce(t *testing.T) {
	db := newTestDB(t)
	memberships := NewMembershipService(db)
	plan := seedPaidPlan(t, db)
	userID := seedUser(t, db)

	payment := &models.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		PlanID:         plan.ID,
		Amount:         49900,
		Currency:       "INR",
		Method:         models.PaymentMethodRazorpay,
		GatewayOrderID: "order_once",
		Status:         models.PaymentStatusCompleted,
	}
	require.NoError(t, db.Create(payment).Error)

	first, err := memberships.Activate(payment, plan)
	require.NoError(t, err)
	require.NotNil(t, first.ExpiryDate)

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	require.NotNil(t, stored.AppliedAt)
	require.NotNil(t, stored.MembershipID)
	assert.Equal(t, first.ID, *stored.MembershipID)

	second, err := memberships.Activate(payment, plan)
	require.NoError(t, err)
	require.NotNil(t, second.ExpiryDate)
	assert.Equal(t, first.ExpiryDate.Unix(), second.ExpiryDate.Unix())
	assert.Equal(t, first.ID, second.ID)
}

// A second, distinct completed payment stacks its duration on the current
// expiry under the same lock path the first activation took.
func TestActivateSecondPaymentRenewsAdditively(t *testing.T) {
	db := newTestDB(t)
	memberships := NewMembershipService(db)
	plan := seedPaidPlan(t, db)
	userID := seedUser(t, db)

	makePayment := func(orderID string) *models.Payment {
		p := &models.Payment{
			ID:             uuid.New(),
			UserID:         userID,
			PlanID:         plan.ID,
			Amount:         49900,
			Currency:       "INR",
			Method:         models.PaymentMethodRazorpay,
			GatewayOrderID: orderID,
			Status:         models.PaymentStatusCompleted,
		}
		require.NoError(t, db.Create(p).Error)
		return p
	}

	first, err := memberships.Activate(makePayment("order_1"), plan)
	require.NoError(t, err)
	require.NotNil(t, first.ExpiryDate)

	second, err := memberships.Activate(makePayment("order_2"), plan)
	require.NoError(t, err)
	require.NotNil(t, second.ExpiryDate)

	assert.Equal(t, first.ID, second.ID)
	assert.WithinDuration(t, first.ExpiryDate.AddDate(0, 0, plan.Duration), *second.ExpiryDate, time.Second)
}

func TestActivateRejectsUnsettledPayment(t *testing.T) {
	db := newTestDB(t)
	memberships := NewMembershipService(db)
	plan := seedPaidPlan(t, db)

	payment := &models.Payment{
		ID:     uuid.New(),
		UserID: seedUser(t, db),
		PlanID: plan.ID,
		Status: models.PaymentStatusPending,
	}

	_, err := memberships.Activate(payment, plan)
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
}
