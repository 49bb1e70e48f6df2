package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/codeversity/backend/internal/dto"
	"github.com/codeversity/backend/internal/gateway"
	"github.com/codeversity/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrFreePlanCheckout   = errors.New("free plans do not go through the payment gateway")
	ErrSignatureMismatch  = errors.New("payment signature verification failed")
	ErrInvalidTransition  = errors.New("invalid payment status transition")
	ErrGateway            = errors.New("payment gateway error")
	ErrActivationDeferred = errors.New("payment captured but membership activation failed")
)

type PaymentService struct {
	db          *gorm.DB
	plans       *PlanService
	memberships *MembershipService
	settings    *SettingsService
}

func NewPaymentService(db *gorm.DB, plans *PlanService, memberships *MembershipService, settings *SettingsService) *PaymentService {
	return &PaymentService{db: db, plans: plans, memberships: memberships, settings: settings}
}

// MinorUnits converts a decimal price to the gateway-native integer amount
// for two-decimal currencies (499.00 INR -> 49900 paise).
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// CreateRazorpayOrder starts a paid checkout: resolve the plan, create the
// gateway order, and only then persist the pending payment row. A gateway
// failure leaves no local side effects.
func (s *PaymentService) CreateRazorpayOrder(userID uuid.UUID, planID uuid.UUID) (*dto.CreateOrderResponse, error) {
	plan, err := s.plans.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if plan.IsFree() {
		return nil, ErrFreePlanCheckout
	}

	creds, err := s.settings.Razorpay()
	if err != nil {
		return nil, err
	}

	amount := MinorUnits(plan.Price)
	client := gateway.NewRazorpayClient(creds.KeyID, creds.KeySecret)
	order, err := client.CreateOrder(amount, plan.Currency, uuid.New().String(), map[string]interface{}{
		"plan_id":       plan.ID.String(),
		"plan_slug":     plan.Slug,
		"duration":      plan.Duration,
		"duration_type": plan.DurationType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	payment := models.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		PlanID:         plan.ID,
		Amount:         amount,
		Currency:       plan.Currency,
		Method:         models.PaymentMethodRazorpay,
		GatewayOrderID: order.ID,
		Status:         models.PaymentStatusPending,
	}
	if err := payment.EncodeMetadata(&models.PaymentMetadata{
		PlanID:       plan.ID,
		PlanSlug:     plan.Slug,
		Duration:     plan.Duration,
		DurationType: plan.DurationType,
		Razorpay:     &models.RazorpayMetadata{OrderID: order.ID},
	}); err != nil {
		return nil, fmt.Errorf("failed to encode payment metadata: %w", err)
	}
	if err := s.db.Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return &dto.CreateOrderResponse{
		OrderID:   order.ID,
		Amount:    amount,
		Currency:  plan.Currency,
		KeyID:     creds.KeyID,
		PaymentID: payment.ID,
	}, nil
}

// CreateStripeIntent is the Stripe leg of checkout; same shape as the
// Razorpay order path, with the PaymentIntent id as the gateway correlation.
func (s *PaymentService) CreateStripeIntent(userID uuid.UUID, planID uuid.UUID) (*dto.CreateIntentResponse, error) {
	plan, err := s.plans.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if plan.IsFree() {
		return nil, ErrFreePlanCheckout
	}

	creds, err := s.settings.Stripe()
	if err != nil {
		return nil, err
	}

	amount := MinorUnits(plan.Price)
	client := gateway.NewStripeClient(creds.SecretKey)
	intent, err := client.CreateIntent(amount, plan.Currency, map[string]string{
		"plan_id":       plan.ID.String(),
		"plan_slug":     plan.Slug,
		"duration":      fmt.Sprintf("%d", plan.Duration),
		"duration_type": plan.DurationType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	payment := models.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		PlanID:         plan.ID,
		Amount:         amount,
		Currency:       plan.Currency,
		Method:         models.PaymentMethodStripe,
		GatewayOrderID: intent.ID,
		Status:         models.PaymentStatusPending,
	}
	if err := payment.EncodeMetadata(&models.PaymentMetadata{
		PlanID:       plan.ID,
		PlanSlug:     plan.Slug,
		Duration:     plan.Duration,
		DurationType: plan.DurationType,
		Stripe:       &models.StripeMetadata{PaymentIntentID: intent.ID},
	}); err != nil {
		return nil, fmt.Errorf("failed to encode payment metadata: %w", err)
	}
	if err := s.db.Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return &dto.CreateIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          amount,
		Currency:        plan.Currency,
		PublishableKey:  creds.PublishableKey,
		PaymentID:       payment.ID,
	}, nil
}

// VerifyRazorpayPayment validates the correlation triple the checkout widget
// handed back. On mismatch the payment is marked failed and nothing touches
// the membership. On match the payment completes and activation runs
// synchronously; if activation fails, the payment stays completed and the
// reconciler retries it.
func (s *PaymentService) VerifyRazorpayPayment(userID uuid.UUID, req *dto.VerifyPaymentRequest) (*models.Membership, error) {
	var payment models.Payment
	if err := s.db.Where("id = ? AND user_id = ?", req.PaymentID, userID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	if payment.Method != models.PaymentMethodRazorpay {
		return nil, ErrPaymentNotFound
	}

	// Verify replays of an already-settled payment resolve to the current
	// ledger instead of re-running the state machine.
	if payment.Status == models.PaymentStatusCompleted {
		return s.memberships.Get(userID)
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, ErrInvalidTransition
	}

	// The triple must belong to this payment's own gateway order; a signature
	// only proves payment for the order it signs.
	if req.RazorpayOrderID != payment.GatewayOrderID {
		if err := s.transition(&payment, models.PaymentStatusFailed, nil); err != nil {
			slog.Error("failed to mark payment failed after order mismatch",
				"payment_id", payment.ID, "error", err)
		}
		return nil, ErrSignatureMismatch
	}

	creds, err := s.settings.Razorpay()
	if err != nil {
		return nil, err
	}

	if !gateway.VerifyCheckoutSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, creds.KeySecret) {
		if err := s.transition(&payment, models.PaymentStatusFailed, nil); err != nil {
			slog.Error("failed to mark payment failed after signature mismatch",
				"payment_id", payment.ID, "error", err)
		}
		return nil, ErrSignatureMismatch
	}

	meta, err := payment.DecodeMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to decode payment metadata: %w", err)
	}
	if meta.Razorpay == nil {
		meta.Razorpay = &models.RazorpayMetadata{OrderID: req.RazorpayOrderID}
	}
	meta.Razorpay.PaymentID = req.RazorpayPaymentID
	meta.Razorpay.Signature = req.RazorpaySignature
	if err := payment.EncodeMetadata(meta); err != nil {
		return nil, fmt.Errorf("failed to encode payment metadata: %w", err)
	}

	if err := s.transition(&payment, models.PaymentStatusCompleted, map[string]interface{}{
		"gateway_payment_id": req.RazorpayPaymentID,
		"metadata":           payment.Metadata,
	}); err != nil {
		return nil, err
	}
	payment.GatewayPaymentID = req.RazorpayPaymentID

	return s.activate(&payment)
}

// CompleteByOrderID settles a payment from a gateway-pushed event
// (payment.captured / payment_intent.succeeded), keyed by the gateway order
// or intent id. Already-completed payments are a no-op so webhook and browser
// verification can race safely.
func (s *PaymentService) CompleteByOrderID(gatewayOrderID, gatewayPaymentID string) error {
	var payment models.Payment
	if err := s.db.Where("gateway_order_id = ?", gatewayOrderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("failed to fetch payment: %w", err)
	}

	if payment.Status == models.PaymentStatusCompleted {
		if payment.AppliedAt == nil {
			_, err := s.activate(&payment)
			return err
		}
		return nil
	}
	if payment.Status != models.PaymentStatusPending {
		return ErrInvalidTransition
	}

	if err := s.transition(&payment, models.PaymentStatusCompleted, map[string]interface{}{
		"gateway_payment_id": gatewayPaymentID,
	}); err != nil {
		return err
	}
	payment.GatewayPaymentID = gatewayPaymentID

	_, err := s.activate(&payment)
	return err
}

// FailByOrderID marks a pending payment failed from a gateway event.
func (s *PaymentService) FailByOrderID(gatewayOrderID string) error {
	result := s.db.Model(&models.Payment{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.PaymentStatusPending).
		Update("status", models.PaymentStatusFailed)
	if result.Error != nil {
		return result.Error
	}
	// Zero rows is fine: the payment may already be settled or unknown.
	return nil
}

// RefundByGatewayPaymentID moves a completed payment to refunded from a
// refund.created event. Entitlement revocation on refund is an explicit
// admin decision, not automatic.
func (s *PaymentService) RefundByGatewayPaymentID(gatewayPaymentID string) error {
	var payment models.Payment
	if err := s.db.Where("gateway_payment_id = ?", gatewayPaymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("failed to fetch payment: %w", err)
	}
	return s.transition(&payment, models.PaymentStatusRefunded, nil)
}

// Refund is the admin path for completed->refunded.
func (s *PaymentService) Refund(paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	if err := s.transition(&payment, models.PaymentStatusRefunded, nil); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) List(limit, offset int) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	s.db.Model(&models.Payment{}).Count(&total)
	if err := s.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return payments, total, nil
}

func (s *PaymentService) activate(payment *models.Payment) (*models.Membership, error) {
	plan, err := s.plans.GetByID(payment.PlanID)
	if err != nil {
		return nil, err
	}
	membership, err := s.memberships.Activate(payment, plan)
	if err != nil {
		// The money moved but the entitlement did not apply. Surface it
		// loudly; the reconciler re-derives membership state from completed
		// payments with no applied_at.
		slog.Error("membership activation failed for completed payment",
			"action", "activation_inconsistency",
			"payment_id", payment.ID.String(),
			"user_id", payment.UserID.String(),
			"error", err)
		return nil, ErrActivationDeferred
	}
	return membership, nil
}

// transition performs a guarded status move. The WHERE clause on the current
// status is the compare-and-swap that keeps concurrent writers from producing
// an illegal edge.
func (s *PaymentService) transition(p *models.Payment, to string, extra map[string]interface{}) error {
	if !models.ValidPaymentTransition(p.Status, to) {
		return ErrInvalidTransition
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	result := s.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", p.ID, p.Status).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	p.Status = to
	return nil
}
