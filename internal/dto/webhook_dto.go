package dto

// RazorpayWebhook is the envelope Razorpay POSTs to the webhook endpoint.
// Only the entities the payment flow consumes are mapped.
type RazorpayWebhook struct {
	Event   string          `json:"event"`
	Payload RazorpayPayload `json:"payload"`
}

type RazorpayPayload struct {
	Payment RazorpayPaymentWrapper `json:"payment"`
	Refund  RazorpayRefundWrapper  `json:"refund"`
}

type RazorpayPaymentWrapper struct {
	Entity RazorpayPaymentEntity `json:"entity"`
}

type RazorpayPaymentEntity struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	ErrorCode   string `json:"error_code"`
	ErrorReason string `json:"error_reason"`
}

type RazorpayRefundWrapper struct {
	Entity RazorpayRefundEntity `json:"entity"`
}

type RazorpayRefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type AssistantQueryRequest struct {
	Prompt string `json:"prompt"`
}

type AssistantQueryResponse struct {
	Reply          string `json:"reply"`
	QueriesUsed    int    `json:"queries_used"`
	QueriesAllowed int    `json:"queries_allowed"` // -1 = unlimited
}
