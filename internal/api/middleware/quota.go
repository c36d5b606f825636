package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/forkintheroad/fitr-admin/internal/domain"
)

// QuotaCounter counts requests per key in fixed windows shared by every
// API instance.
type QuotaCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

type quotaWindow struct {
	name   string
	window time.Duration
	limit  func(ctx context.Context, reader SettingsReader) int
}

var quotaWindows = []quotaWindow{
	{
		name:   "hour",
		window: time.Hour,
		limit: func(ctx context.Context, reader SettingsReader) int {
			return reader.Current(ctx).RateLimiting.RequestsPerHour
		},
	},
	{
		name:   "day",
		window: 24 * time.Hour,
		limit: func(ctx context.Context, reader SettingsReader) int {
			return reader.Current(ctx).RateLimiting.RequestsPerDay
		},
	},
}

// Quota enforces rateLimiting.requestsPerHour and requestsPerDay per caller.
// Counter failures are logged and the request is let through.
func Quota(counter QuotaCounter, reader SettingsReader, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := defaultKey(c)
		ctx := c.UserContext()

		for _, w := range quotaWindows {
			limit := w.limit(ctx, reader)
			if limit < 1 {
				continue
			}

			count, resetAt, err := counter.Hit(ctx, key+":"+w.name, w.window)
			if err != nil {
				logger.Warn("quota check failed", "key", key, "window", w.name, "error", err)
				continue
			}

			if count > limit {
				c.Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())))
				logger.Info("quota exceeded", "key", key, "window", w.name, "count", count, "limit", limit)
				return domain.ErrRateLimitExceeded
			}
		}

		return c.Next()
	}
}
