package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_webhook_secret"

func signCheckout(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyCheckoutSignature(t *testing.T) {
	orderID := "order_MkWq8vR2lZ7xQa"
	paymentID := "pay_MkWrJ3nT5dY1Lb"
	sig := signCheckout(orderID, paymentID, testSecret)

	assert.True(t, VerifyCheckoutSignature(orderID, paymentID, sig, testSecret))

	// Uppercase hex must still verify.
	assert.True(t, VerifyCheckoutSignature(orderID, paymentID, hexUpper(sig), testSecret))

	assert.False(t, VerifyCheckoutSignature(orderID, paymentID, sig, "other_secret"))
	assert.False(t, VerifyCheckoutSignature("order_other", paymentID, sig, testSecret))
	assert.False(t, VerifyCheckoutSignature(orderID, "pay_other", sig, testSecret))
	assert.False(t, VerifyCheckoutSignature(orderID, paymentID, "", testSecret))
	assert.False(t, VerifyCheckoutSignature(orderID, paymentID, sig, ""))
	assert.False(t, VerifyCheckoutSignature(orderID, paymentID, "not-hex!!", testSecret))
}

// Any single-bit mutation of a valid signature must be rejected.
func TestVerifyCheckoutSignatureBitFlips(t *testing.T) {
	orderID := "order_MkWq8vR2lZ7xQa"
	paymentID := "pay_MkWrJ3nT5dY1Lb"
	sig := signCheckout(orderID, paymentID, testSecret)

	raw, err := hex.DecodeString(sig)
	require.NoError(t, err)

	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			mutated := make([]byte, len(raw))
			copy(mutated, raw)
			mutated[i] ^= 1 << bit
			assert.False(t, VerifyCheckoutSignature(orderID, paymentID, hex.EncodeToString(mutated), testSecret),
				"flipped bit %d of byte %d must not verify", bit, i)
		}
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1"}}}}`)

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifyWebhookSignature(body, sig, testSecret))
	assert.False(t, VerifyWebhookSignature(body, sig, "wrong"))
	assert.False(t, VerifyWebhookSignature(append(body, ' '), sig, testSecret))
	assert.False(t, VerifyWebhookSignature(body, "", testSecret))
}

func hexUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
