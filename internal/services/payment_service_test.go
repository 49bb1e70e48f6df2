package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/codeversity/backend/internal/dto"
	"github.com/codeversity/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(49900), MinorUnits(499))
	assert.Equal(t, int64(49950), MinorUnits(499.50))
	assert.Equal(t, int64(100), MinorUnits(1))
	assert.Equal(t, int64(1), MinorUnits(0.01))
	// Float representation of 0.1+0.2 style prices must still round cleanly.
	assert.Equal(t, int64(30), MinorUnits(0.1+0.2))
	assert.Equal(t, int64(0), MinorUnits(0))
}

const verifyTestSecret = "verify_test_secret"

func newVerifyFixture(t *testing.T) (*gorm.DB, *PaymentService) {
	t.Helper()
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", verifyTestSecret)

	db := newTestDB(t)
	plans := NewPlanService(db)
	memberships := NewMembershipService(db)
	settings := NewSettingsService(db)
	return db, NewPaymentService(db, plans, memberships, settings)
}

func razorpaySignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func seedPendingPayment(t *testing.T, db *gorm.DB, userID, planID uuid.UUID, method, orderID string) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		PlanID:         planID,
		Amount:         49900,
		Currency:       "INR",
		Method:         method,
		GatewayOrderID: orderID,
		Status:         models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

// A signature minted for a different order must not settle this payment, even
// when the signature itself is genuine.
func TestVerifyRejectsForeignOrderSignature(t *testing.T) {
	db, payments := newVerifyFixture(t)
	plan := seedPaidPlan(t, db)
	userID := seedUser(t, db)
	payment := seedPendingPayment(t, db, userID, plan.ID, models.PaymentMethodRazorpay, "order_expensive")

	// Valid triple, but for another order.
	req := &dto.VerifyPaymentRequest{
		RazorpayOrderID:   "order_cheap",
		RazorpayPaymentID: "pay_cheap",
		RazorpaySignature: razorpaySignature("order_cheap", "pay_cheap", verifyTestSecret),
		PaymentID:         payment.ID,
	}

	_, err := payments.VerifyRazorpayPayment(userID, req)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, stored.Status)

	var count int64
	db.Model(&models.Membership{}).Where("user_id = ?", userID).Count(&count)
	assert.Zero(t, count)
}

func TestVerifyRejectsNonRazorpayPayment(t *testing.T) {
	db, payments := newVerifyFixture(t)
	plan := seedPaidPlan(t, db)
	userID := seedUser(t, db)
	payment := seedPendingPayment(t, db, userID, plan.ID, models.PaymentMethodStripe, "pi_123")

	req := &dto.VerifyPaymentRequest{
		RazorpayOrderID:   "pi_123",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: razorpaySignature("pi_123", "pay_123", verifyTestSecret),
		PaymentID:         payment.ID,
	}

	_, err := payments.VerifyRazorpayPayment(userID, req)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	// A wrong-endpoint call leaves the Stripe payment untouched.
	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
}

func TestVerifyCompletesAndActivates(t *testing.T) {
	db, payments := newVerifyFixture(t)
	plan := seedPaidPlan(t, db)
	userID := seedUser(t, db)
	payment := seedPendingPayment(t, db, userID, plan.ID, models.PaymentMethodRazorpay, "order_ok")

	req := &dto.VerifyPaymentRequest{
		RazorpayOrderID:   "order_ok",
		RazorpayPaymentID: "pay_ok",
		RazorpaySignature: razorpaySignature("order_ok", "pay_ok", verifyTestSecret),
		PaymentID:         payment.ID,
	}

	membership, err := payments.VerifyRazorpayPayment(userID, req)
	require.NoError(t, err)
	require.NotNil(t, membership.ExpiryDate)
	assert.Equal(t, plan.Slug, membership.PlanType)
	assert.Equal(t, plan.AIQueryLimit, membership.AIUsageLimit)

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, stored.Status)
	assert.Equal(t, "pay_ok", stored.GatewayPaymentID)
	require.NotNil(t, stored.AppliedAt)

	// Replaying the same verification returns the current ledger without a
	// second extension.
	again, err := payments.VerifyRazorpayPayment(userID, req)
	require.NoError(t, err)
	assert.Equal(t, membership.ExpiryDate.Unix(), again.ExpiryDate.Unix())
}
