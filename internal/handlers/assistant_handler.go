package handlers

import (
	"errors"
	"strings"

	"github.com/codeversity/backend/internal/dto"
	"github.com/codeversity/backend/internal/middleware"
	"github.com/codeversity/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AssistantHandler struct {
	assistantService *services.AssistantService
}

func NewAssistantHandler(assistantService *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

// Query forwards a tutor question. Entitlement and quota enforcement happen
// in the service; this layer only maps the outcomes to status codes.
func (h *AssistantHandler) Query(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.AssistantQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Prompt is required",
		})
	}

	reply, used, allowed, err := h.assistantService.Query(userID, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSubscriptionRequired):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "An active subscription is required to use the AI assistant",
			})
		case errors.Is(err, services.ErrQuotaExceeded):
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "AI query limit reached for your plan",
			})
		case errors.Is(err, services.ErrAssistantNotConfigured):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "The AI assistant is not available right now",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to answer the question",
			})
		}
	}

	return c.JSON(dto.AssistantQueryResponse{
		Reply:          reply,
		QueriesUsed:    used,
		QueriesAllowed: allowed,
	})
}
