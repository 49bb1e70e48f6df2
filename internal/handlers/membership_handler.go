package handlers

import (
	"errors"

	"github.com/codeversity/backend/internal/dto"
	"github.com/codeversity/backend/internal/middleware"
	"github.com/codeversity/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
	planService       *services.PlanService
}

func NewMembershipHandler(membershipService *services.MembershipService, planService *services.PlanService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService, planService: planService}
}

// Get returns the caller's own membership, including the computed entitled
// flag. No membership row means the user never subscribed.
func (h *MembershipHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	membership, err := h.membershipService.Get(userID)
	if err != nil {
		if errors.Is(err, services.ErrMembershipNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No membership found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch membership",
		})
	}

	return c.JSON(dto.NewMembershipResponse(membership))
}

// Upgrade activates a free plan directly. Paid plans must go through
// checkout; pointing this endpoint at one is rejected.
func (h *MembershipHandler) Upgrade(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpgradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.PlanType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "plan_type is required",
		})
	}

	plan, err := h.planService.GetBySlug(req.PlanType)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Plan not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch plan",
		})
	}

	membership, err := h.membershipService.ActivateFree(userID, plan)
	if err != nil {
		if errors.Is(err, services.ErrPaidPlanUpgrade) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to activate plan",
		})
	}

	return c.JSON(dto.NewMembershipResponse(membership))
}

// Cancel marks the caller's membership cancelled.
func (h *MembershipHandler) Cancel(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	membership, err := h.membershipService.Cancel(userID)
	if err != nil {
		if errors.Is(err, services.ErrMembershipNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No membership found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to cancel membership",
		})
	}

	return c.JSON(dto.NewMembershipResponse(membership))
}
