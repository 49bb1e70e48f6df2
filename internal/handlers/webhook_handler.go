package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/codeversity/backend/internal/dto"
	"github.com/codeversity/backend/internal/gateway"
	"github.com/codeversity/backend/internal/models"
	"github.com/codeversity/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	stripeapi "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookHandler struct {
	db              *gorm.DB
	paymentService  *services.PaymentService
	settingsService *services.SettingsService
}

func NewWebhookHandler(db *gorm.DB, paymentService *services.PaymentService, settingsService *services.SettingsService) *WebhookHandler {
	return &WebhookHandler{
		db:              db,
		paymentService:  paymentService,
		settingsService: settingsService,
	}
}

// HandleRazorpay processes gateway-pushed payment events. The signature is
// checked over the raw body before anything touches the database; an invalid
// delivery leaves no trace.
func (h *WebhookHandler) HandleRazorpay(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing signature",
		})
	}

	creds, err := h.settingsService.Razorpay()
	if err != nil || creds.WebhookSecret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks are not configured",
		})
	}

	body := c.Body()
	if !gateway.VerifyWebhookSignature(body, signature, creds.WebhookSecret) {
		slog.Warn("razorpay webhook rejected", "reason", "signature mismatch")
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}

	var event dto.RazorpayWebhook
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	if eventID := c.Get("X-Razorpay-Event-Id"); eventID != "" {
		duplicate, err := h.recordEvent("razorpay", eventID, event.Event)
		if err != nil {
			slog.Error("failed to record razorpay webhook event", "event_id", eventID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to process webhook event",
			})
		}
		if duplicate {
			return c.JSON(fiber.Map{"received": true})
		}
	}

	switch event.Event {
	case "payment.captured":
		entity := event.Payload.Payment.Entity
		err = h.paymentService.CompleteByOrderID(entity.OrderID, entity.ID)
	case "payment.failed":
		err = h.paymentService.FailByOrderID(event.Payload.Payment.Entity.OrderID)
	case "refund.created":
		err = h.paymentService.RefundByGatewayPaymentID(event.Payload.Refund.Entity.PaymentID)
	default:
		slog.Info("razorpay webhook ignored", "event_type", event.Event)
		return c.JSON(fiber.Map{"received": true})
	}

	if err != nil {
		// Unknown payments and settled-state races are acknowledged so the
		// gateway stops retrying; the reconciler owns the rest.
		if errors.Is(err, services.ErrPaymentNotFound) || errors.Is(err, services.ErrInvalidTransition) {
			slog.Warn("razorpay webhook had no effect", "event_type", event.Event, "error", err)
		} else {
			slog.Error("razorpay webhook processing failed", "event_type", event.Event, "error", err)
		}
		return c.JSON(fiber.Map{"received": true})
	}

	slog.Info("razorpay webhook processed", "event_type", event.Event)
	return c.JSON(fiber.Map{"received": true})
}

// HandleStripe processes Stripe events. ConstructEvent verifies the
// Stripe-Signature header, including its timestamp tolerance.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing signature",
		})
	}

	creds, err := h.settingsService.Stripe()
	if err != nil || creds.WebhookSecret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks are not configured",
		})
	}

	event, err := webhook.ConstructEvent(c.Body(), signature, creds.WebhookSecret)
	if err != nil {
		slog.Warn("stripe webhook rejected", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}

	duplicate, err := h.recordEvent("stripe", event.ID, string(event.Type))
	if err != nil {
		slog.Error("failed to record stripe webhook event", "event_id", event.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}
	if duplicate {
		return c.JSON(fiber.Map{"received": true})
	}

	switch string(event.Type) {
	case "payment_intent.succeeded":
		var intent stripeapi.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			slog.Error("failed to parse stripe payment intent", "event_id", event.ID, "error", err)
			break
		}
		if err := h.paymentService.CompleteByOrderID(intent.ID, intent.ID); err != nil {
			h.logStripeOutcome(string(event.Type), err)
		}
	case "payment_intent.payment_failed":
		var intent stripeapi.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			slog.Error("failed to parse stripe payment intent", "event_id", event.ID, "error", err)
			break
		}
		if err := h.paymentService.FailByOrderID(intent.ID); err != nil {
			h.logStripeOutcome(string(event.Type), err)
		}
	case "charge.refunded":
		var charge stripeapi.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			slog.Error("failed to parse stripe charge", "event_id", event.ID, "error", err)
			break
		}
		if charge.PaymentIntent != nil {
			if err := h.paymentService.RefundByGatewayPaymentID(charge.PaymentIntent.ID); err != nil {
				h.logStripeOutcome(string(event.Type), err)
			}
		}
	default:
		slog.Info("stripe webhook ignored", "event_type", string(event.Type))
	}

	return c.JSON(fiber.Map{"received": true})
}

func (h *WebhookHandler) logStripeOutcome(eventType string, err error) {
	if errors.Is(err, services.ErrPaymentNotFound) || errors.Is(err, services.ErrInvalidTransition) {
		slog.Warn("stripe webhook had no effect", "event_type", eventType, "error", err)
		return
	}
	slog.Error("stripe webhook processing failed", "event_type", eventType, "error", err)
}

// recordEvent inserts the delivery keyed by (provider, event id). A conflict
// means this exact delivery was already handled; the gateway is retrying.
func (h *WebhookHandler) recordEvent(provider, eventID, eventType string) (duplicate bool, err error) {
	result := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.GatewayEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       eventType,
		Processed:       true,
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 0, nil
}
