package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettingsService(stored map[string]string) *SettingsService {
	s := &SettingsService{}
	s.lookup = func(key string) string { return stored[key] }
	return s
}

func TestSettingsEnvTakesPrecedence(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_env_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "env_secret")

	s := newTestSettingsService(map[string]string{
		SettingRazorpayKeyID:     "rzp_db_key",
		SettingRazorpayKeySecret: "db_secret",
	})

	creds, err := s.Razorpay()
	require.NoError(t, err)
	assert.Equal(t, "rzp_env_key", creds.KeyID)
	assert.Equal(t, "env_secret", creds.KeySecret)
}

func TestSettingsFallBackToStore(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")

	s := newTestSettingsService(map[string]string{
		SettingRazorpayKeyID:         "rzp_db_key",
		SettingRazorpayKeySecret:     "db_secret",
		SettingRazorpayWebhookSecret: "db_webhook",
	})

	creds, err := s.Razorpay()
	require.NoError(t, err)
	assert.Equal(t, "rzp_db_key", creds.KeyID)
	assert.Equal(t, "db_secret", creds.KeySecret)
	assert.Equal(t, "db_webhook", creds.WebhookSecret)
}

func TestSettingsMissingCredentials(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_PUBLISHABLE_KEY", "")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	s := newTestSettingsService(nil)

	_, err := s.Razorpay()
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)

	_, err = s.Stripe()
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}
