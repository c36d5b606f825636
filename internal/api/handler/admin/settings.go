package admin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/forkintheroad/fitr-admin/internal/api/middleware"
	"github.com/forkintheroad/fitr-admin/internal/settings"
)

// SettingsService reads and changes the system settings.
type SettingsService interface {
	Get(ctx context.Context) (*settings.Snapshot, error)
	Update(ctx context.Context, body []byte, actor string) (*settings.UpdateResult, error)
	Reset(ctx context.Context, confirm bool, actor string) (*settings.Snapshot, error)
}

type SettingsHandler struct {
	settings SettingsService
}

func NewSettingsHandler(s SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: s}
}

type ResetSettingsRequest struct {
	ConfirmReset bool `json:"confirmReset"`
}

type SettingsResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Settings    interface{} `json:"settings"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// Get handles GET /api/admin/settings
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	snapshot, err := h.settings.Get(c.UserContext())
	if err != nil {
		return failure(err, "Failed to fetch settings")
	}

	return c.JSON(SettingsResponse{
		Success:     true,
		Settings:    snapshot.Settings,
		LastUpdated: snapshot.LastUpdated,
	})
}

// Update handles PUT /api/admin/settings
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	actor, _ := middleware.GetAdminUserID(c)

	result, err := h.settings.Update(c.UserContext(), c.Body(), actor)
	if err != nil {
		return failure(err, "Failed to update settings")
	}

	return c.JSON(SettingsResponse{
		Success:     true,
		Message:     "Settings updated successfully",
		Settings:    result.Settings,
		LastUpdated: result.LastUpdated,
	})
}

// Reset handles POST /api/admin/settings
func (h *SettingsHandler) Reset(c *fiber.Ctx) error {
	var req ResetSettingsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return failure(err, "Failed to reset settings")
	}
	actor, _ := middleware.GetAdminUserID(c)

	snapshot, err := h.settings.Reset(c.UserContext(), req.ConfirmReset, actor)
	if err != nil {
		return failure(err, "Failed to reset settings")
	}

	return c.JSON(SettingsResponse{
		Success:     true,
		Message:     "Settings reset to defaults",
		Settings:    snapshot.Settings,
		LastUpdated: snapshot.LastUpdated,
	})
}
