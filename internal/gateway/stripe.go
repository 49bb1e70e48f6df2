package gateway

import (
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// StripeIntent is the slice of a PaymentIntent the checkout flow needs. The
// client secret goes to the browser for the Stripe.js confirm step.
type StripeIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

type StripeClient struct {
	secretKey string
}

func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{secretKey: secretKey}
}

// CreateIntent creates a PaymentIntent for the given minor-unit amount.
// Metadata carries the plan snapshot for webhook-side reconciliation.
func (c *StripeClient) CreateIntent(amount int64, currency string, metadata map[string]string) (*StripeIntent, error) {
	stripe.Key = c.secretKey

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent create: %w", err)
	}

	return &StripeIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       amount,
		Currency:     currency,
	}, nil
}
