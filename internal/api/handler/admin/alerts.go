package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/forkintheroad/fitr-admin/internal/alert"
	"github.com/forkintheroad/fitr-admin/internal/api/middleware"
	"github.com/forkintheroad/fitr-admin/internal/domain"
)

// AlertService is the alert lifecycle used by AlertsHandler.
type AlertService interface {
	Create(ctx context.Context, in alert.NewAlert, opts alert.CreateOptions) (*alert.Alert, error)
	List(ctx context.Context, f alert.Filter, p alert.Page) (*alert.ListResult, error)
	Transition(ctx context.Context, req alert.TransitionRequest) (*alert.Alert, error)
	Delete(ctx context.Context, id, actor string) error
}

type AlertsHandler struct {
	alerts AlertService
	logger *slog.Logger
}

func NewAlertsHandler(alerts AlertService, logger *slog.Logger) *AlertsHandler {
	return &AlertsHandler{
		alerts: alerts,
		logger: logger,
	}
}

type CreateAlertRequest struct {
	AlertData *alert.NewAlert `json:"alertData"`
	SendEmail *bool           `json:"sendEmail,omitempty"`
}

type AlertResponse struct {
	Success bool         `json:"success"`
	Alert   *alert.Alert `json:"alert"`
}

type ListAlertsResponse struct {
	Success    bool             `json:"success"`
	Alerts     []alert.Alert    `json:"alerts"`
	Stats      alert.Stats      `json:"stats"`
	Pagination alert.Pagination `json:"pagination"`
}

// List handles GET /api/admin/alerts
func (h *AlertsHandler) List(c *fiber.Ctx) error {
	filter := alert.Filter{
		Severity:     alert.Severity(c.Query("severity")),
		Type:         c.Query("type"),
		Acknowledged: queryBool(c, "acknowledged"),
		Resolved:     queryBool(c, "resolved"),
	}
	page := alert.Page{
		Limit:  c.QueryInt("limit", alert.DefaultLimit),
		Offset: c.QueryInt("offset", alert.DefaultOffset),
	}

	result, err := h.alerts.List(c.UserContext(), filter, page)
	if err != nil {
		return failure(err, "Failed to fetch alerts")
	}

	return c.JSON(ListAlertsResponse{
		Success:    true,
		Alerts:     result.Alerts,
		Stats:      result.Stats,
		Pagination: result.Pagination,
	})
}

// Create handles POST /api/admin/alerts
func (h *AlertsHandler) Create(c *fiber.Ctx) error {
	var req CreateAlertRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return failure(err, "Failed to create alert")
	}
	if req.AlertData == nil {
		return domain.ErrMissingAlertFields
	}

	sendEmail := true
	if req.SendEmail != nil {
		sendEmail = *req.SendEmail
	}
	actor, _ := middleware.GetAdminUserID(c)

	created, err := h.alerts.Create(c.UserContext(), *req.AlertData, alert.CreateOptions{
		SendEmail: sendEmail,
		Actor:     actor,
	})
	if err != nil {
		return failure(err, "Failed to create alert")
	}

	return c.JSON(AlertResponse{Success: true, Alert: created})
}

// Update handles PUT /api/admin/alerts
func (h *AlertsHandler) Update(c *fiber.Ctx) error {
	var req alert.TransitionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return failure(err, "Failed to update alert")
	}

	updated, err := h.alerts.Transition(c.UserContext(), req)
	if err != nil {
		return failure(err, "Failed to update alert")
	}

	h.logger.Info("alert updated",
		"alert_id", updated.ID,
		"action", req.Action,
		"user_id", req.UserID,
	)

	return c.JSON(AlertResponse{Success: true, Alert: updated})
}

// Delete handles DELETE /api/admin/alerts?id=
func (h *AlertsHandler) Delete(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return domain.ErrMissingAlertID
	}
	actor, _ := middleware.GetAdminUserID(c)

	if err := h.alerts.Delete(c.UserContext(), id, actor); err != nil {
		return failure(err, "Failed to delete alert")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Alert deleted successfully",
	})
}

// queryBool returns nil when the parameter is absent or not a boolean.
func queryBool(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
