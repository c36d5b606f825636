package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/forkintheroad/fitr-admin/internal/alert"
	"github.com/forkintheroad/fitr-admin/internal/metrics"
	"github.com/forkintheroad/fitr-admin/internal/settings"
)

// criticalUsage escalates a resource alert to critical.
const criticalUsage = 95.0

type AlertCreator interface {
	Create(ctx context.Context, in alert.NewAlert, opts alert.CreateOptions) (*alert.Alert, error)
}

type SettingsReader interface {
	Current(ctx context.Context) settings.Settings
}

// Worker samples the host every interval and raises system_resource_high
// alerts for resources above their thresholds.
type Worker struct {
	sampler  Sampler
	alerts   AlertCreator
	settings SettingsReader
	cooldown *alert.Cooldown
	metrics  *metrics.Collectors
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewWorker(sampler Sampler, alerts AlertCreator, settingsReader SettingsReader, cooldown *alert.Cooldown, m *metrics.Collectors, logger *slog.Logger, interval time.Duration) *Worker {
	return &Worker{
		sampler:  sampler,
		alerts:   alerts,
		settings: settingsReader,
		cooldown: cooldown,
		metrics:  m,
		logger:   logger.With("component", "system_monitor"),
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("system monitor started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("system monitor stopped")
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

type resource struct {
	name      string
	label     string
	usage     float64
	threshold float64
}

// Check takes one sample and raises alerts for breached thresholds.
func (w *Worker) Check(ctx context.Context) {
	sample, err := w.sampler.Sample(ctx)
	if err != nil {
		w.logger.Warn("failed to sample host resources", "error", err)
		return
	}

	w.metrics.SetResourceUsage("cpu", sample.CPU)
	w.metrics.SetResourceUsage("memory", sample.Memory)
	w.metrics.SetResourceUsage("disk", sample.Disk)

	now := w.now()
	current := w.settings.Current(ctx)
	if current.InMaintenance(now) {
		w.logger.Debug("resource alerts skipped during maintenance")
		return
	}

	thresholds := current.AlertThresholds.SystemAlerts
	for _, r := range []resource{
		{name: "cpu", label: "CPU", usage: sample.CPU, threshold: thresholds.CPUThreshold},
		{name: "memory", label: "Memory", usage: sample.Memory, threshold: thresholds.MemoryThreshold},
		{name: "disk", label: "Disk", usage: sample.Disk, threshold: thresholds.DiskThreshold},
	} {
		if err := w.checkResource(ctx, r, now); err != nil {
			w.logger.Warn("failed to raise resource alert", "resource", r.name, "error", err)
		}
	}
}

func (w *Worker) checkResource(ctx context.Context, r resource, now time.Time) error {
	if r.threshold <= 0 || r.usage < r.threshold {
		return nil
	}

	key := "system:" + r.name
	if !w.cooldown.Allow(key, now) {
		return nil
	}

	severity := alert.SeverityHigh
	if r.usage >= criticalUsage {
		severity = alert.SeverityCritical
	}

	_, err := w.alerts.Create(ctx, alert.NewAlert{
		Type:     alert.TypeSystemResourceHigh,
		Severity: severity,
		Title:    fmt.Sprintf("High %s usage", r.label),
		Message:  fmt.Sprintf("%s usage is %.1f%%, above the %.0f%% threshold", r.label, r.usage, r.threshold),
		Metadata: map[string]interface{}{
			"resource":  r.name,
			"usage":     r.usage,
			"threshold": r.threshold,
		},
		RecommendedActions: []string{
			fmt.Sprintf("Inspect processes consuming %s", r.label),
			"Scale the service or raise the threshold in settings",
		},
	}, alert.CreateOptions{SendEmail: true, Actor: "system_monitor"})
	if err != nil {
		w.cooldown.Reset(key)
		return err
	}

	return nil
}
