package handlers

import (
	"errors"

	"github.com/codeversity/backend/internal/dto"
	"github.com/codeversity/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PlanHandler struct {
	planService *services.PlanService
}

func NewPlanHandler(planService *services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// List is the public catalog: active plans only, in display order.
func (h *PlanHandler) List(c *fiber.Ctx) error {
	plans, err := h.planService.ListActive()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch plans",
		})
	}
	return c.JSON(fiber.Map{"plans": plans})
}

func (h *PlanHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plan id",
		})
	}

	plan, err := h.planService.GetByID(id)
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
	return c.JSON(plan)
}

// ListAll is the admin view: every plan including inactive ones, paginated.
func (h *PlanHandler) ListAll(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	plans, total, err := h.planService.ListAll(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch plans",
		})
	}
	return c.JSON(fiber.Map{"plans": plans, "total": total, "limit": limit, "offset": offset})
}

func (h *PlanHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	plan, err := h.planService.Create(&req)
	if err != nil {
		if errors.Is(err, services.ErrSlugTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrInvalidPlan) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create plan",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *PlanHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plan id",
		})
	}

	var req dto.UpdatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	plan, err := h.planService.Update(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Plan not found",
			})
		}
		if errors.Is(err, services.ErrInvalidPlan) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update plan",
		})
	}
	return c.JSON(plan)
}

func (h *PlanHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plan id",
		})
	}

	if err := h.planService.Delete(id); err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Plan not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete plan",
		})
	}
	return c.JSON(fiber.Map{"message": "Plan deleted"})
}
