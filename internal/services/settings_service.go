package services

import (
	"errors"
	"os"

	"github.com/codeversity/backend/internal/models"
	"gorm.io/gorm"
)

var ErrGatewayNotConfigured = errors.New("payment gateway credentials are not configured")

// Settings table keys for gateway credentials.
const (
	SettingRazorpayKeyID         = "razorpay_key_id"
	SettingRazorpayKeySecret     = "razorpay_key_secret"
	SettingRazorpayWebhookSecret = "razorpay_webhook_secret"
	SettingStripeSecretKey       = "stripe_secret_key"
	SettingStripePublishableKey  = "stripe_publishable_key"
	SettingStripeWebhookSecret   = "stripe_webhook_secret"
)

type RazorpayCredentials struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

type StripeCredentials struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
}

// SettingsService resolves configuration values with a fixed precedence:
// process environment first, then the admin-editable settings table. The
// precedence lives here, in one place, rather than at every call site.
type SettingsService struct {
	db     *gorm.DB
	lookup func(key string) string
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	s := &SettingsService{db: db}
	s.lookup = s.dbValue
	return s
}

func (s *SettingsService) dbValue(key string) string {
	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return ""
	}
	return setting.Value
}

func (s *SettingsService) resolve(envKey, settingKey string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return s.lookup(settingKey)
}

func (s *SettingsService) Razorpay() (RazorpayCredentials, error) {
	creds := RazorpayCredentials{
		KeyID:         s.resolve("RAZORPAY_KEY_ID", SettingRazorpayKeyID),
		KeySecret:     s.resolve("RAZORPAY_KEY_SECRET", SettingRazorpayKeySecret),
		WebhookSecret: s.resolve("RAZORPAY_WEBHOOK_SECRET", SettingRazorpayWebhookSecret),
	}
	if creds.KeyID == "" || creds.KeySecret == "" {
		return RazorpayCredentials{}, ErrGatewayNotConfigured
	}
	return creds, nil
}

func (s *SettingsService) Stripe() (StripeCredentials, error) {
	creds := StripeCredentials{
		SecretKey:      s.resolve("STRIPE_SECRET_KEY", SettingStripeSecretKey),
		PublishableKey: s.resolve("STRIPE_PUBLISHABLE_KEY", SettingStripePublishableKey),
		WebhookSecret:  s.resolve("STRIPE_WEBHOOK_SECRET", SettingStripeWebhookSecret),
	}
	if creds.SecretKey == "" {
		return StripeCredentials{}, ErrGatewayNotConfigured
	}
	return creds, nil
}

// Upsert writes an admin-edited setting.
func (s *SettingsService) Upsert(key, value, settingType string) (*models.Setting, error) {
	if settingType == "" {
		settingType = "string"
	}

	var setting models.Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{Key: key, Value: value, Type: settingType}
		if err := s.db.Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	}
	if err != nil {
		return nil, err
	}

	setting.Value = value
	setting.Type = settingType
	if err := s.db.Save(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (s *SettingsService) Delete(key string) error {
	return s.db.Where("key = ?", key).Delete(&models.Setting{}).Error
}
