package admin

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/forkintheroad/fitr-admin/internal/api/middleware"
	"github.com/forkintheroad/fitr-admin/internal/domain"
	"github.com/forkintheroad/fitr-admin/internal/usage"
)

const analyticsFailure = "Failed to fetch usage analytics"

// UsageService computes usage analytics reports.
type UsageService interface {
	Compute(ctx context.Context, period string) (*usage.Report, error)
}

type AnalyticsHandler struct {
	usage  UsageService
	logger *slog.Logger
}

func NewAnalyticsHandler(u UsageService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		usage:  u,
		logger: logger,
	}
}

// Usage handles GET /api/admin/analytics/usage?period=
//
// The route sits behind OptionalAdminAuth. A missing admin identity is
// reported like any other failure, as a 500.
func (h *AnalyticsHandler) Usage(c *fiber.Ctx) error {
	adminID, err := middleware.GetAdminUserID(c)
	if err != nil {
		h.logger.Warn("usage analytics requested without admin identity", "path", c.Path())
		return domain.ErrInternal.WithMessage(analyticsFailure).WithError(err)
	}

	report, err := h.usage.Compute(c.UserContext(), c.Query("period"))
	if err != nil {
		return domain.ErrInternal.WithMessage(analyticsFailure).WithError(err)
	}

	h.logger.Debug("usage analytics served", "admin_id", adminID, "period", report.Period)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    report,
	})
}
