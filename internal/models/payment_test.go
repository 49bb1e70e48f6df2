package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPaymentTransition(t *testing.T) {
	assert.True(t, ValidPaymentTransition(PaymentStatusPending, PaymentStatusCompleted))
	assert.True(t, ValidPaymentTransition(PaymentStatusPending, PaymentStatusFailed))
	assert.True(t, ValidPaymentTransition(PaymentStatusCompleted, PaymentStatusRefunded))

	assert.False(t, ValidPaymentTransition(PaymentStatusCompleted, PaymentStatusPending))
	assert.False(t, ValidPaymentTransition(PaymentStatusCompleted, PaymentStatusFailed))
	assert.False(t, ValidPaymentTransition(PaymentStatusFailed, PaymentStatusCompleted))
	assert.False(t, ValidPaymentTransition(PaymentStatusFailed, PaymentStatusRefunded))
	assert.False(t, ValidPaymentTransition(PaymentStatusRefunded, PaymentStatusCompleted))
	assert.False(t, ValidPaymentTransition(PaymentStatusPending, PaymentStatusRefunded))
	assert.False(t, ValidPaymentTransition(PaymentStatusPending, PaymentStatusPending))
}

func TestPaymentMetadataRoundTrip(t *testing.T) {
	planID := uuid.New()
	p := &Payment{}

	require.NoError(t, p.EncodeMetadata(&PaymentMetadata{
		PlanID:       planID,
		PlanSlug:     "pro-monthly",
		Duration:     1,
		DurationType: DurationMonth,
		Razorpay:     &RazorpayMetadata{OrderID: "order_abc"},
	}))

	meta, err := p.DecodeMetadata()
	require.NoError(t, err)
	assert.Equal(t, planID, meta.PlanID)
	assert.Equal(t, "pro-monthly", meta.PlanSlug)
	require.NotNil(t, meta.Razorpay)
	assert.Equal(t, "order_abc", meta.Razorpay.OrderID)
	assert.Nil(t, meta.Stripe)
}

func TestDecodeMetadataEmpty(t *testing.T) {
	p := &Payment{}
	meta, err := p.DecodeMetadata()
	require.NoError(t, err)
	assert.Equal(t, &PaymentMetadata{}, meta)
}
