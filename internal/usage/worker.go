package usage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/forkintheroad/fitr-admin/internal/alert"
	"github.com/forkintheroad/fitr-admin/internal/settings"
)

// criticalCostMultiple escalates a cost alert to critical once spend reaches
// this multiple of the threshold.
const criticalCostMultiple = 2

// CostReader returns the API cost accumulated since a point in time.
type CostReader interface {
	CostSince(ctx context.Context, t time.Time) (float64, error)
}

// AlertCreator raises alerts.
type AlertCreator interface {
	Create(ctx context.Context, in alert.NewAlert, opts alert.CreateOptions) (*alert.Alert, error)
}

// SettingsReader supplies the current thresholds and maintenance window.
type SettingsReader interface {
	Current(ctx context.Context) settings.Settings
}

// Worker checks daily and monthly API spend against the cost thresholds and
// raises cost alerts.
type Worker struct {
	costs    CostReader
	alerts   AlertCreator
	settings SettingsReader
	cooldown *alert.Cooldown
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewWorker(costs CostReader, alerts AlertCreator, settingsReader SettingsReader, cooldown *alert.Cooldown, logger *slog.Logger, interval time.Duration) *Worker {
	return &Worker{
		costs:    costs,
		alerts:   alerts,
		settings: settingsReader,
		cooldown: cooldown,
		logger:   logger.With("component", "cost_worker"),
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run starts the worker loop
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cost check worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cost check worker stopped")
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

type costWindow struct {
	key       string
	label     string
	since     time.Time
	threshold float64
}

// Check runs one pass over the daily and monthly windows.
func (w *Worker) Check(ctx context.Context) {
	now := w.now()
	current := w.settings.Current(ctx)
	if current.InMaintenance(now) {
		w.logger.Debug("cost check skipped during maintenance")
		return
	}

	thresholds := current.AlertThresholds.CostAlerts
	windows := []costWindow{
		{
			key:       "cost:daily",
			label:     "Daily",
			since:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			threshold: thresholds.DailyThreshold,
		},
		{
			key:       "cost:monthly",
			label:     "Monthly",
			since:     time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
			threshold: thresholds.MonthlyThreshold,
		},
	}

	for _, win := range windows {
		if err := w.checkWindow(ctx, win, now); err != nil {
			w.logger.Warn("cost check failed", "window", win.key, "error", err)
		}
	}
}

func (w *Worker) checkWindow(ctx context.Context, win costWindow, now time.Time) error {
	// a zero threshold disables the check
	if win.threshold <= 0 {
		return nil
	}

	cost, err := w.costs.CostSince(ctx, win.since)
	if err != nil {
		return err
	}
	if cost < win.threshold {
		return nil
	}
	if !w.cooldown.Allow(win.key, now) {
		return nil
	}

	severity := alert.SeverityHigh
	if cost >= win.threshold*criticalCostMultiple {
		severity = alert.SeverityCritical
	}

	_, err = w.alerts.Create(ctx, alert.NewAlert{
		Type:     alert.TypeCostThresholdExceeded,
		Severity: severity,
		Title:    fmt.Sprintf("%s API cost threshold exceeded", win.label),
		Message:  fmt.Sprintf("%s API cost is $%.2f, above the $%.2f threshold", win.label, cost, win.threshold),
		Metadata: map[string]interface{}{
			"window":    win.key,
			"cost":      cost,
			"threshold": win.threshold,
			"since":     win.since.Format(time.RFC3339),
		},
		RecommendedActions: []string{
			"Review Google Places and Maps usage in the analytics dashboard",
			"Lower provider quotas in settings if the spend is unexpected",
		},
	}, alert.CreateOptions{SendEmail: true, Actor: "cost_worker"})
	if err != nil {
		w.cooldown.Reset(win.key)
		return fmt.Errorf("create cost alert: %w", err)
	}

	return nil
}
