package handlers

import (
	"errors"

	"github.com/codeversity/backend/internal/dto"
	"github.com/codeversity/backend/internal/middleware"
	"github.com/codeversity/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateOrder opens a Razorpay checkout for a paid plan.
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.paymentService.CreateRazorpayOrder(userID, req.PlanID)
	if err != nil {
		return h.checkoutError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// CreateIntent opens a Stripe PaymentIntent for a paid plan.
func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.paymentService.CreateStripeIntent(userID, req.PlanID)
	if err != nil {
		return h.checkoutError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *PaymentHandler) checkoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPlanNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Plan not found",
		})
	case errors.Is(err, services.ErrFreePlanCheckout):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrGatewayNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Payments are not available right now",
		})
	case errors.Is(err, services.ErrGateway):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Payment gateway error",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to start checkout",
		})
	}
}

// Verify settles a Razorpay checkout from the browser callback. The response
// never echoes signature material back; a mismatch is just a failed
// verification.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing verification fields",
		})
	}

	membership, err := h.paymentService.VerifyRazorpayPayment(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment not found",
			})
		case errors.Is(err, services.ErrSignatureMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment verification failed",
			})
		case errors.Is(err, services.ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment is not awaiting verification",
			})
		case errors.Is(err, services.ErrGatewayNotConfigured):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Payments are not available right now",
			})
		case errors.Is(err, services.ErrActivationDeferred):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment received; membership activation is pending",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to verify payment",
			})
		}
	}

	return c.JSON(dto.VerifyPaymentResponse{
		Success:    true,
		Membership: dto.NewMembershipResponse(membership),
	})
}

// ListAll is the admin payment history view.
func (h *PaymentHandler) ListAll(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	payments, total, err := h.paymentService.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch payments",
		})
	}
	return c.JSON(fiber.Map{"payments": payments, "total": total, "limit": limit, "offset": offset})
}

// Refund moves a completed payment to refunded. Admin only; the membership is
// untouched, revoking entitlement is a separate call.
func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid payment id",
		})
	}

	payment, err := h.paymentService.Refund(id)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment not found",
			})
		}
		if errors.Is(err, services.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Only completed payments can be refunded",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to refund payment",
		})
	}
	return c.JSON(payment)
}
