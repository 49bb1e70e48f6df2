package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyCheckoutSignature validates the signature Razorpay's checkout widget
// hands back to the browser after a successful payment: hex-encoded
// HMAC-SHA256 over "orderID|paymentID" keyed with the account's key secret.
// hmac.Equal keeps the comparison constant-time.
func VerifyCheckoutSignature(orderID, paymentID, signature, secret string) bool {
	return verifyHMAC([]byte(orderID+"|"+paymentID), signature, secret)
}

// VerifyWebhookSignature validates the X-Razorpay-Signature header: the same
// HMAC scheme computed over the raw request body with the webhook secret.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	return verifyHMAC(body, signature, secret)
}

func verifyHMAC(payload []byte, signature, secret string) bool {
	sig := strings.TrimSpace(signature)
	if sig == "" || secret == "" {
		return false
	}

	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decoded)
}
