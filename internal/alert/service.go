package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/forkintheroad/fitr-admin/internal/audit"
	"github.com/forkintheroad/fitr-admin/internal/domain"
	"github.com/forkintheroad/fitr-admin/internal/metrics"
	"github.com/forkintheroad/fitr-admin/internal/ws"
)

const maxIDAttempts = 3

// Broadcaster publishes live admin events.
type Broadcaster interface {
	Broadcast(eventType ws.EventType, data interface{})
}

// CreateOptions controls side effects of Create.
type CreateOptions struct {
	SendEmail bool
	Actor     string
}

// TransitionRequest acknowledges or resolves an alert on behalf of UserID.
type TransitionRequest struct {
	AlertID string `json:"alertId"`
	Action  Action `json:"action"`
	UserID  string `json:"userId"`
}

// Service implements the alert lifecycle: create, list, transition, delete.
type Service struct {
	repo       Repository
	dispatcher Dispatcher
	audit      audit.Logger
	events     Broadcaster
	metrics    *metrics.Collectors
	logger     *slog.Logger
	now        func() time.Time
	newID      func(time.Time) string
}

type ServiceOption func(*Service)

func WithDispatcher(d Dispatcher) ServiceOption {
	return func(s *Service) { s.dispatcher = d }
}

func WithAudit(l audit.Logger) ServiceOption {
	return func(s *Service) { s.audit = l }
}

func WithBroadcaster(b Broadcaster) ServiceOption {
	return func(s *Service) { s.events = b }
}

func WithMetrics(m *metrics.Collectors) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(repo Repository, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		audit:  &audit.NoOpLogger{},
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new alert. Notification dispatch never
// affects the outcome.
func (s *Service) Create(ctx context.Context, in NewAlert, opts CreateOptions) (*Alert, error) {
	if strings.TrimSpace(in.Type) == "" || in.Severity == "" ||
		strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, domain.ErrMissingAlertFields
	}
	if !in.Severity.Valid() {
		return nil, domain.ErrInvalidSeverity
	}

	now := s.now()
	a := &Alert{
		Type:               in.Type,
		Severity:           in.Severity,
		Title:              in.Title,
		Message:            in.Message,
		Timestamp:          now,
		Metadata:           in.Metadata,
		RecommendedActions: in.RecommendedActions,
	}
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		a.Timestamp = in.Timestamp.UTC()
	}

	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		a.ID = s.newID(now)
		if err = s.repo.Put(ctx, a); !errors.Is(err, ErrDuplicateID) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("store alert: %w", err)
	}

	s.metrics.AlertCreated(string(a.Severity))
	s.record(ctx, audit.EventAlertCreated, opts.Actor, a.ID, map[string]string{
		"type":     a.Type,
		"severity": string(a.Severity),
	})
	s.broadcast(ws.EventAlertCreated, *a)

	s.logger.Info("alert created",
		"alert_id", a.ID,
		"type", a.Type,
		"severity", a.Severity,
	)

	if opts.SendEmail && s.dispatcher != nil {
		s.dispatcher.Dispatch(*a)
	}

	return a, nil
}

// List returns one page of the filtered alerts, newest first.
func (s *Service) List(ctx context.Context, f Filter, p Page) (*ListResult, error) {
	alerts, err := s.repo.Query(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return BuildList(alerts, f, p), nil
}

// Transition acknowledges or resolves an alert. Both are idempotent.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*Alert, error) {
	if req.AlertID == "" || req.Action == "" || strings.TrimSpace(req.UserID) == "" {
		return nil, domain.ErrMissingTransitionFields
	}

	if _, err := s.repo.Get(ctx, req.AlertID); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		updated   *Alert
		err       error
		eventType ws.EventType
		auditType audit.EventType
	)
	switch req.Action {
	case ActionAcknowledge:
		updated, err = s.repo.MarkAcknowledged(ctx, req.AlertID, req.UserID, now)
		eventType, auditType = ws.EventAlertAcknowledged, audit.EventAlertAcknowledged
	case ActionResolve:
		updated, err = s.repo.MarkResolved(ctx, req.AlertID, req.UserID, now)
		eventType, auditType = ws.EventAlertResolved, audit.EventAlertResolved
	default:
		return nil, domain.ErrInvalidAction
	}
	if err != nil {
		return nil, err
	}

	s.metrics.AlertTransition(string(req.Action))
	s.record(ctx, auditType, req.UserID, req.AlertID, nil)
	s.broadcast(eventType, *updated)

	return updated, nil
}

// Delete permanently removes an alert.
func (s *Service) Delete(ctx context.Context, id, actor string) error {
	if id == "" {
		return domain.ErrMissingAlertID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.AlertTransition("delete")
	s.record(ctx, audit.EventAlertDeleted, actor, id, nil)
	s.broadcast(ws.EventAlertDeleted, map[string]string{"id": id})

	return nil
}

func (s *Service) record(ctx context.Context, eventType audit.EventType, actor, alertID string, metadata map[string]string) {
	if actor == "" {
		actor = "system"
	}
	if err := s.audit.Log(ctx, audit.Event{
		EventType: eventType,
		Actor:     actor,
		AlertID:   alertID,
		Success:   true,
		Metadata:  metadata,
	}); err != nil {
		s.logger.Warn("failed to write audit event", "event_type", eventType, "error", err)
	}
}

func (s *Service) broadcast(eventType ws.EventType, data interface{}) {
	if s.events != nil {
		s.events.Broadcast(eventType, data)
	}
}
