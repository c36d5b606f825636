package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"

	"github.com/forkintheroad/fitr-admin/internal/alert"
	"github.com/forkintheroad/fitr-admin/internal/performance"
	"github.com/forkintheroad/fitr-admin/internal/settings"
	"github.com/forkintheroad/fitr-admin/internal/usage"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Missing required alert fields"`
	Code    string `json:"code" example:"MISSING_ALERT_FIELDS"`
}

// MessageResponse represents a plain success message
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Alert deleted successfully"`
}

type CreateAlertBody struct {
	AlertData alert.NewAlert `json:"alertData"`
	SendEmail bool           `json:"sendEmail" example:"true"`
}

type TransitionAlertBody struct {
	AlertID string `json:"alertId" example:"alert_1714521600000_k3j9x2m1q"`
	Action  string `json:"action" example:"acknowledge"`
	UserID  string `json:"userId" example:"user_2abc"`
}

type AlertResponse struct {
	Success bool        `json:"success" example:"true"`
	Alert   alert.Alert `json:"alert"`
}

type ListAlertsResponse struct {
	Success    bool             `json:"success" example:"true"`
	Alerts     []alert.Alert    `json:"alerts"`
	Stats      alert.Stats      `json:"stats"`
	Pagination alert.Pagination `json:"pagination"`
}

type UpdateSettingsBody struct {
	Settings settings.Settings `json:"settings"`
}

type ResetSettingsBody struct {
	ConfirmReset bool `json:"confirmReset" example:"true"`
}

type SettingsResponse struct {
	Success     bool              `json:"success" example:"true"`
	Message     string            `json:"message,omitempty" example:"Settings updated successfully"`
	Settings    settings.Settings `json:"settings"`
	LastUpdated string            `json:"lastUpdated" example:"2024-05-01T12:00:00Z"`
}

type UsageAnalyticsResponse struct {
	Success bool         `json:"success" example:"true"`
	Data    usage.Report `json:"data"`
}

type CompareBundlesBody struct {
	Old performance.Bundle `json:"old"`
	New performance.Bundle `json:"new"`
}

type CompareBundlesResponse struct {
	Success    bool                         `json:"success" example:"true"`
	Comparison performance.BundleComparison `json:"comparison"`
}

var (
	errUnauthorized = response.New(ErrorResponse{Error: "Authentication required", Code: "UNAUTHORIZED"}, "401", "Unauthorized")
	errForbidden    = response.New(ErrorResponse{Error: "Access denied", Code: "FORBIDDEN"}, "403", "Forbidden")
	errRateLimited  = response.New(ErrorResponse{Error: "Rate limit exceeded, please try again later", Code: "RATE_LIMIT_EXCEEDED"}, "429", "Too Many Requests")
	bearerAuth      = []map[string][]string{{"BearerAuth": {}}}
)

func internalError(message string) response.Response {
	return response.New(ErrorResponse{Error: message, Code: "INTERNAL_ERROR"}, "500", "Internal Server Error")
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Fork In The Road Admin API",
		Version:     "v1.0.0",
		Description: "Back-office API: operational alerts, system settings, usage analytics and bundle metrics",
		Host:        "localhost:3000",
		Path:        "/api/admin",
	})

	endpoints := []*endpoint.EndPoint{
		// GET /api/admin/alerts - List alerts
		endpoint.New(
			endpoint.GET,
			"/alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("List alerts"),
			endpoint.WithDescription("Filters, sorts newest first and paginates alerts. Stats cover the whole filtered set."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Page size (default 50)")),
				parameter.IntParam("offset", parameter.Query, parameter.WithDescription("Records to skip (default 0)")),
				parameter.StrParam("severity", parameter.Query, parameter.WithDescription("critical, high, medium or low")),
				parameter.StrParam("type", parameter.Query, parameter.WithDescription("Alert type, e.g. cost_threshold_exceeded")),
				parameter.BoolParam("acknowledged", parameter.Query, parameter.WithDescription("Filter by acknowledgement")),
				parameter.BoolParam("resolved", parameter.Query, parameter.WithDescription("Filter by resolution")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ListAlertsResponse{}, "200", "Alerts page"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				errForbidden,
				errRateLimited,
				internalError("Failed to fetch alerts"),
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// POST /api/admin/alerts - Create alert
		endpoint.New(
			endpoint.POST,
			"/alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Create an alert"),
			endpoint.WithDescription("Stores a new alert and, unless sendEmail is false, emails the configured recipients"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(CreateAlertBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertResponse{}, "200", "Alert created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: "Missing required alert fields", Code: "MISSING_ALERT_FIELDS"}, "400", "Bad Request"),
				errUnauthorized,
				errForbidden,
				internalError("Failed to create alert"),
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// PUT /api/admin/alerts - Acknowledge or resolve
		endpoint.New(
			endpoint.PUT,
			"/alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Acknowledge or resolve an alert"),
			endpoint.WithDescription("Both actions are idempotent and independent of each other"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(TransitionAlertBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertResponse{}, "200", "Alert updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: "Invalid action", Code: "INVALID_ACTION"}, "400", "Bad Request"),
				errUnauthorized,
				errForbidden,
				response.New(ErrorResponse{Error: "Alert not found", Code: "ALERT_NOT_FOUND"}, "404", "Not Found"),
				internalError("Failed to update alert"),
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// DELETE /api/admin/alerts?id= - Delete alert
		endpoint.New(
			endpoint.DELETE,
			"/alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Delete an alert"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Query, parameter.WithDescription("Alert ID"), parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MessageResponse{}, "200", "Alert deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: "Alert ID is required", Code: "MISSING_ALERT_ID"}, "400", "Bad Request"),
				errUnauthorized,
				errForbidden,
				response.New(ErrorResponse{Error: "Alert not found", Code: "ALERT_NOT_FOUND"}, "404", "Not Found"),
				internalError("Failed to delete alert"),
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// GET /api/admin/settings - Current settings
		endpoint.New(
			endpoint.GET,
			"/settings",
			endpoint.WithTags("Settings"),
			endpoint.WithSummary("Get system settings"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SettingsResponse{}, "200", "Current settings"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				errForbidden,
				internalError("Failed to fetch settings"),
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// PUT /api/admin/settings - Partial update
		endpoint.New(
			endpoint.PUT,
			"/settings",
			endpoint.WithTags("Settings"),
			endpoint.WithSummary("Update system settings"),
			endpoint.WithDescription("Validates the partial settings and applies them atomically. The first failing rule is reported."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(UpdateSettingsBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SettingsResponse{}, "200", "Settings updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: "Rate limiting values must be positive numbers", Code: "VALIDATION_FAILED"}, "400", "Bad Request"),
				errUnauthorized,
				errForbidden,
				internalError("Failed to update settings"),
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// POST /api/admin/settings - Reset to defaults
		endpoint.New(
			endpoint.POST,
			"/settings",
			endpoint.WithTags("Settings"),
			endpoint.WithSummary("Reset system settings"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(ResetSettingsBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SettingsResponse{}, "200", "Defaults restored"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: "Reset confirmation required", Code: "RESET_NOT_CONFIRMED"}, "400", "Bad Request"),
				errUnauthorized,
				errForbidden,
				internalError("Failed to reset settings"),
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// GET /api/admin/analytics/usage - Usage analytics
		endpoint.New(
			endpoint.GET,
			"/analytics/usage",
			endpoint.WithTags("Analytics"),
			endpoint.WithSummary("Usage analytics report"),
			endpoint.WithDescription("Aggregates feature usage, user behavior, daily activity and API cost. Any failure, including a missing admin identity, is a 500."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("period", parameter.Query, parameter.WithDescription("7d, 30d or 90d (default 7d)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UsageAnalyticsResponse{}, "200", "Usage report"),
			}),
			endpoint.WithErrors([]response.Response{
				errRateLimited,
				internalError("Failed to fetch usage analytics"),
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// POST /api/admin/performance/compare - Bundle comparison
		endpoint.New(
			endpoint.POST,
			"/performance/compare",
			endpoint.WithTags("Performance"),
			endpoint.WithSummary("Compare bundle metrics of two builds"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(CompareBundlesBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CompareBundlesResponse{}, "200", "Comparison"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Error: "Both old and new bundle metrics are required", Code: "VALIDATION_FAILED"}, "400", "Bad Request"),
				errUnauthorized,
				errForbidden,
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// GET /api/admin/system/health - System health
		endpoint.New(
			endpoint.GET,
			"/system/health",
			endpoint.WithTags("System"),
			endpoint.WithSummary("System health"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				errForbidden,
			}),
			endpoint.WithSecurity(bearerAuth),
		),

		// GET /api/admin/system/metrics - Runtime metrics
		endpoint.New(
			endpoint.GET,
			"/system/metrics",
			endpoint.WithTags("System"),
			endpoint.WithSummary("Process runtime metrics"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				errForbidden,
			}),
			endpoint.WithSecurity(bearerAuth),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
