package admin

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/forkintheroad/fitr-admin/internal/domain"
	"github.com/forkintheroad/fitr-admin/internal/performance"
)

type PerformanceHandler struct{}

func NewPerformanceHandler() *PerformanceHandler {
	return &PerformanceHandler{}
}

type CompareBundlesRequest struct {
	Old *performance.Bundle `json:"old"`
	New *performance.Bundle `json:"new"`
}

// Compare handles POST /api/admin/performance/compare
func (h *PerformanceHandler) Compare(c *fiber.Ctx) error {
	var req CompareBundlesRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return failure(err, "Failed to compare bundle metrics")
	}
	if req.Old == nil || req.New == nil {
		return domain.NewValidationError("Both old and new bundle metrics are required")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"comparison": performance.CompareBundles(*req.Old, *req.New),
	})
}
