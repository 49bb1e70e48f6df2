package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codeversity/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRazorpayWebhookApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "test_key_secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "test_webhook_secret")

	// Credentials resolve from the environment, so nothing here reaches the
	// database before the signature check.
	h := NewWebhookHandler(nil, nil, services.NewSettingsService(nil))

	app := fiber.New()
	app.Post("/api/webhooks/razorpay", h.HandleRazorpay)
	return app
}

func signBody(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpayWebhookMissingSignature(t *testing.T) {
	app := newRazorpayWebhookApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/razorpay", strings.NewReader(`{"event":"payment.captured"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRazorpayWebhookInvalidSignature(t *testing.T) {
	app := newRazorpayWebhookApp(t)

	body := `{"event":"payment.captured"}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", signBody(body, "wrong_secret"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRazorpayWebhookTamperedBody(t *testing.T) {
	app := newRazorpayWebhookApp(t)

	signed := signBody(`{"event":"payment.captured"}`, "test_webhook_secret")
	req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/razorpay", strings.NewReader(`{"event":"payment.failed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", signed)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRazorpayWebhookUnknownEventAcknowledged(t *testing.T) {
	app := newRazorpayWebhookApp(t)

	body := `{"event":"order.paid"}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", signBody(body, "test_webhook_secret"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
