package handlers

import (
	"time"

	"github.com/codeversity/backend/internal/database"
	"github.com/codeversity/backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

func Health(c *fiber.Ctx) error {
	dbStatus := "ok"
	status := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unreachable"
		status = "degraded"
	}

	resp := dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	}
	if status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
