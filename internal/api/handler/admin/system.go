package admin

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	sysadmin "github.com/forkintheroad/fitr-admin/internal/admin"
)

// SystemService reports process health and runtime metrics.
type SystemService interface {
	GetSystemHealth(ctx context.Context) (*sysadmin.SystemHealth, error)
	GetSystemMetrics(ctx context.Context) (*sysadmin.SystemMetrics, error)
}

type SystemHandler struct {
	system SystemService
	logger *slog.Logger
}

func NewSystemHandler(system SystemService, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		system: system,
		logger: logger,
	}
}

// GetSystemHealth handles GET /api/admin/system/health
func (h *SystemHandler) GetSystemHealth(c *fiber.Ctx) error {
	health, err := h.system.GetSystemHealth(c.UserContext())
	if err != nil {
		h.logger.Error("failed to get system health", "error", err)
		return fiber.ErrInternalServerError
	}

	statusCode := fiber.StatusOK
	if health.Status == sysadmin.StatusUnhealthy {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(health)
}

// GetSystemMetrics handles GET /api/admin/system/metrics
func (h *SystemHandler) GetSystemMetrics(c *fiber.Ctx) error {
	metrics, err := h.system.GetSystemMetrics(c.UserContext())
	if err != nil {
		h.logger.Error("failed to get system metrics", "error", err)
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"data": metrics,
	})
}
