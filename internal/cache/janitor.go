package cache

import (
	"context"
	"log/slog"
	"time"
)

const defaultJanitorInterval = 10 * time.Minute

// Cleaner removes expired entries and reports how many were dropped.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Janitor periodically purges expired rows from a Cleaner, such as the
// analytics cache or the quota counters.
type Janitor struct {
	cache    Cleaner
	interval time.Duration
	logger   *slog.Logger
}

func NewJanitor(cache Cleaner, interval time.Duration, logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	return &Janitor{
		cache:    cache,
		interval: interval,
		logger:   logger.With("component", "janitor"),
	}
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("janitor started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := j.cache.CleanupExpired(ctx)
	if err != nil {
		j.logger.Error("failed to purge expired entries", "error", err)
		return
	}
	if removed > 0 {
		j.logger.Debug("purged expired entries", "removed", removed)
	}
}
