package handlers

import (
	"github.com/codeversity/backend/internal/dto"
	"github.com/codeversity/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

type upsertSettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Upsert writes an admin-editable setting. Environment variables still win
// over anything stored here.
func (h *SettingsHandler) Upsert(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "key is required",
		})
	}

	var req upsertSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	setting, err := h.settingsService.Upsert(key, req.Value, req.Type)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save setting",
		})
	}
	return c.JSON(setting)
}

func (h *SettingsHandler) Delete(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "key is required",
		})
	}

	if err := h.settingsService.Delete(key); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete setting",
		})
	}
	return c.JSON(fiber.Map{"message": "Setting deleted"})
}
