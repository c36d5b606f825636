package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store persists the singleton settings document.
type Store interface {
	Load(ctx context.Context) (Settings, time.Time, error)
	Save(ctx context.Context, s Settings, updatedAt time.Time) error
}

// MemoryStore keeps settings for the lifetime of the process.
type MemoryStore struct {
	mu        sync.RWMutex
	settings  Settings
	updatedAt time.Time
}

// NewMemoryStore creates a store seeded with Defaults.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		settings:  Defaults(),
		updatedAt: time.Now().UTC(),
	}
}

func (m *MemoryStore) Load(_ context.Context) (Settings, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.clone(), m.updatedAt, nil
}

func (m *MemoryStore) Save(_ context.Context, s Settings, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s.clone()
	m.updatedAt = updatedAt
	return nil
}

// DB interface for database operations (compatible with pgxpool.Pool and pgxmock)
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

const settingsRowID = 1

// PGStore keeps settings as a single jsonb row in system_settings.
type PGStore struct {
	db DB
}

func NewPGStore(db DB) *PGStore {
	return &PGStore{db: db}
}

// Load returns Defaults when no row has been written yet.
func (s *PGStore) Load(ctx context.Context) (Settings, time.Time, error) {
	query := `
		SELECT settings, updated_at
		FROM system_settings
		WHERE id = $1
	`

	var (
		raw       []byte
		updatedAt time.Time
	)
	err := s.db.QueryRow(ctx, query, settingsRowID).Scan(&raw, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Defaults(), time.Now().UTC(), nil
		}
		return Settings{}, time.Time{}, fmt.Errorf("load settings: %w", err)
	}

	settings := Defaults()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return Settings{}, time.Time{}, fmt.Errorf("decode settings: %w", err)
	}

	return settings, updatedAt, nil
}

func (s *PGStore) Save(ctx context.Context, settings Settings, updatedAt time.Time) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	query := `
		INSERT INTO system_settings (id, settings, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET settings = EXCLUDED.settings,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.Exec(ctx, query, settingsRowID, raw, updatedAt); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
