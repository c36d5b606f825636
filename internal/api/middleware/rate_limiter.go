package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/forkintheroad/fitr-admin/internal/domain"
	"github.com/forkintheroad/fitr-admin/internal/settings"
)

const defaultRateLimit = 60

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	// Limit returns the max requests per window. It is read each time a
	// client starts a new window, so changes apply without restart.
	Limit func(ctx context.Context) int
	// Window duration
	Window time.Duration
	// KeyGenerator identifies the caller: admin user id, else client IP.
	KeyGenerator func(c *fiber.Ctx) string
}

// SettingsReader supplies the current system settings.
type SettingsReader interface {
	Current(ctx context.Context) settings.Settings
}

// SettingsRateLimiterConfig limits each admin to rateLimiting.requestsPerMinute.
func SettingsRateLimiterConfig(reader SettingsReader) RateLimiterConfig {
	return RateLimiterConfig{
		Limit: func(ctx context.Context) int {
			return reader.Current(ctx).RateLimiting.RequestsPerMinute
		},
		Window: time.Minute,
	}
}

func defaultKey(c *fiber.Ctx) string {
	if userID, ok := c.Locals(LocalAdminUser).(string); ok && userID != "" {
		return "admin:" + userID
	}
	return "ip:" + c.IP()
}

// clientWindow tracks rate limiting state for one caller
type clientWindow struct {
	limit      int
	count      int
	windowEnd  time.Time
	lastAccess time.Time
}

// RateLimiter is a fixed-window limiter keyed per caller.
type RateLimiter struct {
	config  RateLimiterConfig
	windows map[string]*clientWindow
	mu      sync.Mutex
	done    chan struct{}
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Limit == nil {
		config.Limit = func(context.Context) int { return defaultRateLimit }
	}
	if config.Window == 0 {
		config.Window = time.Minute
	}
	if config.KeyGenerator == nil {
		config.KeyGenerator = defaultKey
	}

	rl := &RateLimiter{
		config:  config,
		windows: make(map[string]*clientWindow),
		done:    make(chan struct{}),
		now:     time.Now,
	}

	// Start cleanup goroutine
	go rl.cleanup()

	return rl
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// Handler returns the Fiber middleware handler
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := rl.config.KeyGenerator(c)
		now := rl.now()

		rl.mu.Lock()
		w, exists := rl.windows[key]
		if !exists || now.After(w.windowEnd) {
			limit := rl.config.Limit(c.UserContext())
			if limit < 1 {
				limit = defaultRateLimit
			}
			w = &clientWindow{
				limit:     limit,
				windowEnd: now.Add(rl.config.Window),
			}
			rl.windows[key] = w
		}
		w.count++
		w.lastAccess = now
		count, limit, windowEnd := w.count, w.limit, w.windowEnd
		rl.mu.Unlock()

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", windowEnd.Format(time.RFC3339))

		if count > limit {
			c.Set("Retry-After", strconv.Itoa(int(windowEnd.Sub(now).Seconds())))
			return domain.ErrRateLimitExceeded
		}

		return c.Next()
	}
}

// cleanup removes stale entries
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.windows {
				// Remove entries that haven't been accessed in 2 windows
				if now.Sub(w.lastAccess) > 2*rl.config.Window {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
