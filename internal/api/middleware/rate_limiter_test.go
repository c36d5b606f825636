package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkintheroad/fitr-admin/internal/settings"
)

type fixedSettings struct {
	perMinute atomic.Int64
}

func (f *fixedSettings) Current(context.Context) settings.Settings {
	s := settings.Defaults()
	s.RateLimiting.RequestsPerMinute = int(f.perMinute.Load())
	return s
}

func newLimitedApp(rl *RateLimiter) *fiber.App {
	app := newTestApp(discardLogger())
	app.Use(rl.Handler())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func doRequests(t *testing.T, app *fiber.App, n int) []int {
	t.Helper()
	statuses := make([]int, 0, n)
	for i := 0; i < n; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	return statuses
}

func TestRateLimiter(t *testing.T) {
	t.Run("blocks requests over the settings limit", func(t *testing.T) {
		reader := &fixedSettings{}
		reader.perMinute.Store(2)

		rl := NewRateLimiter(SettingsRateLimiterConfig(reader))
		defer rl.Stop()

		statuses := doRequests(t, newLimitedApp(rl), 3)
		assert.Equal(t, []int{200, 200, 429}, statuses)
	})

	t.Run("sets rate limit headers", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Limit: func(context.Context) int { return 5 },
		})
		defer rl.Stop()

		resp, err := newLimitedApp(rl).Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, "5", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	})

	t.Run("new limit applies on the next window", func(t *testing.T) {
		reader := &fixedSettings{}
		reader.perMinute.Store(1)

		rl := NewRateLimiter(SettingsRateLimiterConfig(reader))
		defer rl.Stop()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }

		app := newLimitedApp(rl)
		assert.Equal(t, []int{200, 429}, doRequests(t, app, 2))

		reader.perMinute.Store(3)
		assert.Equal(t, []int{429}, doRequests(t, app, 1))

		now = now.Add(61 * time.Second)
		assert.Equal(t, []int{200, 200, 200, 429}, doRequests(t, app, 4))
	})

	t.Run("separate keys have separate windows", func(t *testing.T) {
		var calls atomic.Int32
		rl := NewRateLimiter(RateLimiterConfig{
			Limit: func(context.Context) int { return 1 },
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.Get("X-Admin")
			},
		})
		defer rl.Stop()

		app := newTestApp(discardLogger())
		app.Use(rl.Handler())
		app.Get("/test", func(c *fiber.Ctx) error {
			calls.Add(1)
			return c.SendString("OK")
		})

		for _, who := range []string{"a", "b", "a"} {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Admin", who)
			_, err := app.Test(req)
			require.NoError(t, err)
		}
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Limit: func(context.Context) int { return 0 },
		})
		defer rl.Stop()

		resp, err := newLimitedApp(rl).Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, "60", resp.Header.Get("X-RateLimit-Limit"))
	})
}

func TestRateLimiter_Stop(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	assert.NotPanics(t, rl.Stop)
}
