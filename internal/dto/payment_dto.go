package dto

import "github.com/google/uuid"

type CreateOrderRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

// CreateOrderResponse is handed to the Razorpay checkout widget in the
// browser. Amount is in the currency's smallest unit.
type CreateOrderResponse struct {
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	KeyID     string    `json:"key_id"`
	PaymentID uuid.UUID `json:"payment_id"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	RazorpaySignature string    `json:"razorpay_signature"`
	PaymentID         uuid.UUID `json:"payment_id"`
}

type VerifyPaymentResponse struct {
	Success    bool               `json:"success"`
	Membership MembershipResponse `json:"membership"`
}

type CreateIntentRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

type CreateIntentResponse struct {
	PaymentIntentID string    `json:"payment_intent_id"`
	ClientSecret    string    `json:"client_secret"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	PublishableKey  string    `json:"publishable_key"`
	PaymentID       uuid.UUID `json:"payment_id"`
}
