package admin

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/forkintheroad/fitr-admin/internal/api/middleware"
	"github.com/forkintheroad/fitr-admin/internal/domain"
	"github.com/forkintheroad/fitr-admin/internal/usage"
)

type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) Compute(ctx context.Context, period string) (*usage.Report, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usage.Report), args.Error(1)
}

func sampleReport() *usage.Report {
	end := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	return &usage.Report{
		Period:    usage.Period30d,
		DateRange: usage.DateRange{Start: end.AddDate(0, 0, -30), End: end},
		UserBehavior: usage.UserBehavior{
			TotalUsers:     10,
			ActiveUsers:    4,
			EngagementRate: 40,
		},
	}
}

func TestAnalyticsHandler_Usage(t *testing.T) {
	t.Run("returns report", func(t *testing.T) {
		svc := new(MockUsageService)
		svc.On("Compute", mock.Anything, "30d").Return(sampleReport(), nil)

		app := newTestApp()
		app.Get("/analytics/usage", NewAnalyticsHandler(svc, discardLogger()).Usage)

		status, payload := doRequest(t, app, http.MethodGet, "/analytics/usage?period=30d", "")

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, payload["success"])
		data := payload["data"].(map[string]interface{})
		assert.Equal(t, "30d", data["period"])
		behavior := data["userBehavior"].(map[string]interface{})
		assert.Equal(t, float64(40), behavior["engagementRate"])
		svc.AssertExpectations(t)
	})

	t.Run("datastore failure hides details", func(t *testing.T) {
		svc := new(MockUsageService)
		svc.On("Compute", mock.Anything, "").Return(nil, errors.New("count decisions: timeout"))

		app := newTestApp()
		app.Get("/analytics/usage", NewAnalyticsHandler(svc, discardLogger()).Usage)

		status, payload := doRequest(t, app, http.MethodGet, "/analytics/usage", "")

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Failed to fetch usage analytics", payload["error"])
		assert.Nil(t, payload["data"])
	})

	t.Run("missing admin identity is a 500", func(t *testing.T) {
		svc := new(MockUsageService)

		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(discardLogger())})
		app.Get("/analytics/usage", NewAnalyticsHandler(svc, discardLogger()).Usage)

		status, payload := doRequest(t, app, http.MethodGet, "/analytics/usage?period=7d", "")

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Failed to fetch usage analytics", payload["error"])
		assert.Equal(t, domain.ErrInternal.Code, payload["code"])
		svc.AssertNotCalled(t, "Compute", mock.Anything, mock.Anything)
	})
}
