package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/forkintheroad/fitr-admin/internal/audit"
	"github.com/forkintheroad/fitr-admin/internal/metrics"
	"github.com/forkintheroad/fitr-admin/internal/notify"
	"github.com/forkintheroad/fitr-admin/internal/settings"
)

const defaultDispatchTimeout = 10 * time.Second

// SettingsReader supplies the current notification settings.
type SettingsReader interface {
	Current(ctx context.Context) settings.Settings
}

// Dispatcher sends a best-effort notification for a new alert.
type Dispatcher interface {
	Dispatch(a Alert)
}

// Notifier emails new alerts. Each alert gets a single delivery attempt on a
// detached goroutine; failures are logged and counted, never returned.
type Notifier struct {
	sender   notify.Sender
	settings SettingsReader
	fallback []string
	audit    audit.Logger
	metrics  *metrics.Collectors
	logger   *slog.Logger
	timeout  time.Duration

	wg sync.WaitGroup
}

func NewNotifier(sender notify.Sender, settingsReader SettingsReader, fallback []string, auditLogger audit.Logger, m *metrics.Collectors, logger *slog.Logger) *Notifier {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &Notifier{
		sender:   sender,
		settings: settingsReader,
		fallback: fallback,
		audit:    auditLogger,
		metrics:  m,
		logger:   logger.With("component", "alert_notifier"),
		timeout:  defaultDispatchTimeout,
	}
}

// Dispatch returns immediately.
func (n *Notifier) Dispatch(a Alert) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.metrics.NotificationSent(metrics.ResultFailed)
				n.logger.Error("panic in alert notification", "alert_id", a.ID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		n.deliver(ctx, a)
	}()
}

// Wait blocks until in-flight dispatches finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, a Alert) {
	recipients, enabled := n.recipients(ctx)
	if !enabled || len(recipients) == 0 {
		n.metrics.NotificationSent(metrics.ResultSkipped)
		n.logger.Info("alert notification skipped",
			"alert_id", a.ID,
			"email_enabled", enabled,
		)
		return
	}

	msg := RenderEmail(a)
	msg.To = recipients

	err := n.sender.Send(ctx, msg)

	event := audit.Event{
		EventType: audit.EventAlertNotified,
		Actor:     "system",
		AlertID:   a.ID,
		Success:   err == nil,
		Metadata: map[string]string{
			"provider":   n.sender.Name(),
			"recipients": fmt.Sprintf("%d", len(recipients)),
		},
	}
	if err != nil {
		event.Error = err.Error()
		n.metrics.NotificationSent(metrics.ResultFailed)
		n.logger.Error("failed to send alert notification",
			"alert_id", a.ID,
			"provider", n.sender.Name(),
			"error", err,
		)
	} else {
		n.metrics.NotificationSent(metrics.ResultSent)
		n.logger.Info("alert notification sent",
			"alert_id", a.ID,
			"provider", n.sender.Name(),
			"recipients", len(recipients),
		)
	}
	if err := n.audit.Log(ctx, event); err != nil {
		n.logger.Warn("failed to write audit event", "event_type", event.EventType, "alert_id", a.ID, "error", err)
	}
}

// recipients prefers the settings list and falls back to the configured one
// when email is enabled but no recipients are set.
func (n *Notifier) recipients(ctx context.Context) ([]string, bool) {
	if n.settings == nil {
		return n.fallback, true
	}
	current := n.settings.Current(ctx)
	if !current.NotificationSettings.Email.Enabled {
		return nil, false
	}
	if r := current.EmailRecipients(); len(r) > 0 {
		return r, true
	}
	return n.fallback, true
}

// RenderEmail builds the notification subject and plain text body.
func RenderEmail(a Alert) notify.Message {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", a.Message)
	fmt.Fprintf(&b, "Type: %s\n", a.Type)
	fmt.Fprintf(&b, "Severity: %s\n", a.Severity)
	fmt.Fprintf(&b, "Time: %s\n", a.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Alert ID: %s\n", a.ID)

	if len(a.RecommendedActions) > 0 {
		b.WriteString("\nRecommended actions:\n")
		for _, action := range a.RecommendedActions {
			fmt.Fprintf(&b, "  - %s\n", action)
		}
	}

	return notify.Message{
		Subject: fmt.Sprintf("[%s] %s", strings.ToUpper(string(a.Severity)), a.Title),
		Text:    b.String(),
		Tags: map[string]string{
			"alert_type": a.Type,
			"severity":   string(a.Severity),
		},
	}
}
