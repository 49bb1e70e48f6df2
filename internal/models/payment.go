package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodStripe   = "stripe"
)

// RazorpayMetadata carries the checkout correlation values Razorpay hands
// back. PaymentID and Signature are filled in at verification time.
type RazorpayMetadata struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id,omitempty"`
	Signature string `json:"signature,omitempty"`
}

type StripeMetadata struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ChargeID        string `json:"charge_id,omitempty"`
}

// PaymentMetadata is the typed metadata bag on a payment row: a snapshot of
// the plan terms at order time plus exactly one gateway-specific section,
// keyed by the payment method.
type PaymentMetadata struct {
	PlanID       uuid.UUID         `json:"plan_id"`
	PlanSlug     string            `json:"plan_slug"`
	Duration     int               `json:"duration"`
	DurationType string            `json:"duration_type"`
	Razorpay     *RazorpayMetadata `json:"razorpay,omitempty"`
	Stripe       *StripeMetadata   `json:"stripe,omitempty"`
}

// Payment records one checkout attempt. Rows are append-mostly: status moves
// along pending->completed, pending->failed or completed->refunded and the
// row is never deleted.
type Payment struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"plan_id"`
	Amount           int64          `gorm:"not null" json:"amount"` // smallest currency unit
	Currency         string         `gorm:"size:3;not null" json:"currency"`
	Method           string         `gorm:"size:20;not null" json:"method"`
	GatewayOrderID   string         `gorm:"size:255;index" json:"gateway_order_id"`
	GatewayPaymentID string         `gorm:"size:255;index" json:"gateway_payment_id"`
	Status           string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Metadata         datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	MembershipID     *uuid.UUID     `gorm:"type:uuid" json:"membership_id,omitempty"`
	AppliedAt        *time.Time     `json:"applied_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	User             User           `gorm:"foreignKey:UserID" json:"-"`
}

func (p *Payment) DecodeMetadata() (*PaymentMetadata, error) {
	meta := &PaymentMetadata{}
	if len(p.Metadata) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(p.Metadata, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (p *Payment) EncodeMetadata(meta *PaymentMetadata) error {
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	p.Metadata = datatypes.JSON(b)
	return nil
}

// ValidPaymentTransition enforces the only legal status edges:
// pending->completed, pending->failed, completed->refunded.
func ValidPaymentTransition(from, to string) bool {
	switch from {
	case PaymentStatusPending:
		return to == PaymentStatusCompleted || to == PaymentStatusFailed
	case PaymentStatusCompleted:
		return to == PaymentStatusRefunded
	default:
		return false
	}
}
