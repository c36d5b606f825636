package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/forkintheroad/fitr-admin/internal/audit"
	"github.com/forkintheroad/fitr-admin/internal/domain"
	"github.com/forkintheroad/fitr-admin/internal/ws"
)

// Broadcaster publishes live admin events.
type Broadcaster interface {
	Broadcast(eventType ws.EventType, data interface{})
}

// Snapshot is the current settings with their last modification time.
type Snapshot struct {
	Settings    Settings  `json:"settings"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// UpdateResult echoes the accepted partial settings.
type UpdateResult struct {
	Settings    json.RawMessage `json:"settings"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

type Service struct {
	store  Store
	audit  audit.Logger
	events Broadcaster
	logger *slog.Logger
	now    func() time.Time

	// serializes read-modify-write updates
	mu sync.Mutex
}

func NewService(store Store, auditLogger audit.Logger, events Broadcaster, logger *slog.Logger) *Service {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &Service{
		store:  store,
		audit:  auditLogger,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the effective settings.
func (s *Service) Get(ctx context.Context) (*Snapshot, error) {
	current, updatedAt, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Settings: current, LastUpdated: updatedAt}, nil
}

// Current returns the effective settings, falling back to Defaults when the
// store is unavailable. Used by background workers and middleware.
func (s *Service) Current(ctx context.Context) Settings {
	current, _, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load settings, using defaults", "error", err)
		return Defaults()
	}
	return current
}

// Update validates a `{"settings": {...}}` body and merges the present
// subtrees into the stored settings. Nothing is applied when any rule fails.
func (s *Service) Update(ctx context.Context, body []byte, actor string) (*UpdateResult, error) {
	patch, raw, err := DecodeUpdate(body)
	if err != nil {
		return nil, err
	}

	if err := Validate(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	updatedAt := s.now()
	if err := s.store.Save(ctx, patch.Apply(current), updatedAt); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventSettingsUpdated, actor)
	s.broadcast(ws.EventSettingsUpdated, map[string]interface{}{
		"settings":    raw,
		"lastUpdated": updatedAt,
	})

	return &UpdateResult{Settings: raw, LastUpdated: updatedAt}, nil
}

// Reset restores Defaults when confirmed.
func (s *Service) Reset(ctx context.Context, confirm bool, actor string) (*Snapshot, error) {
	if !confirm {
		return nil, domain.ErrResetNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := Defaults()
	updatedAt := s.now()
	if err := s.store.Save(ctx, defaults, updatedAt); err != nil {
		return nil, fmt.Errorf("reset settings: %w", err)
	}

	s.record(ctx, audit.EventSettingsReset, actor)
	s.broadcast(ws.EventSettingsUpdated, map[string]interface{}{
		"settings":    defaults,
		"lastUpdated": updatedAt,
	})

	return &Snapshot{Settings: defaults, LastUpdated: updatedAt}, nil
}

func (s *Service) record(ctx context.Context, eventType audit.EventType, actor string) {
	if err := s.audit.Log(ctx, audit.Event{
		EventType: eventType,
		Actor:     actor,
		Success:   true,
	}); err != nil {
		s.logger.Warn("failed to write audit event", "event_type", eventType, "error", err)
	}
}

func (s *Service) broadcast(eventType ws.EventType, data interface{}) {
	if s.events != nil {
		s.events.Broadcast(eventType, data)
	}
}
