package gateway

import (
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayOrder is the slice of the Orders API response the checkout flow
// needs.
type RazorpayOrder struct {
	ID       string
	Amount   int64
	Currency string
}

// RazorpayClient wraps the official SDK. Clients are cheap to construct, so
// callers build one per request from freshly resolved credentials; admins can
// rotate keys in the settings table without a restart.
type RazorpayClient struct {
	keyID     string
	keySecret string
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{keyID: keyID, keySecret: keySecret}
}

func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

// CreateOrder requests an order from the Razorpay Orders API. Amount is in
// the currency's smallest unit. Notes travel with the order and come back on
// webhooks, which makes reconciliation possible without a local lookup.
func (c *RazorpayClient) CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (*RazorpayOrder, error) {
	client := razorpay.NewClient(c.keyID, c.keySecret)

	body, err := client.Order.Create(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("razorpay order create: response missing order id")
	}

	return &RazorpayOrder{ID: id, Amount: amount, Currency: currency}, nil
}

// VerifyCheckout checks the browser-supplied correlation triple against the
// key secret this client was built with.
func (c *RazorpayClient) VerifyCheckout(orderID, paymentID, signature string) bool {
	return VerifyCheckoutSignature(orderID, paymentID, signature, c.keySecret)
}
