package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema means a previous migration stopped halfway and the schema
// must be repaired with Force before anything else runs.
var ErrDirtySchema = errors.New("schema is dirty")

// Migrator applies the embedded fitr schema migrations.
type Migrator struct {
	m      *migrate.Migrate
	logger *slog.Logger
}

// migrateLogger routes golang-migrate's progress lines into slog.
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return false
}

func NewMigrator(db *sql.DB, dbName string, logger *slog.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{
		DatabaseName: dbName,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	logger = logger.With("component", "migrator", "database", dbName)
	m.Log = migrateLogger{logger: logger}

	return &Migrator{m: m, logger: logger}, nil
}

// Up applies every pending migration and logs the version it moved from and to.
func (m *Migrator) Up() error {
	from, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("run migrations at version %d: %w", from, ErrDirtySchema)
	}

	err = m.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("schema up to date", "version", from)
		return nil
	}
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	to, _, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("schema migrated", "from", from, "to", to)
	return nil
}

// Down rolls back the last migration. Development only: it drops admin data.
func (m *Migrator) Down() error {
	if err := m.m.Steps(-1); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	version, _, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Warn("schema rolled back", "version", version)
	return nil
}

// Version reports the applied version; 0 means nothing has run yet.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied and clean without running anything. It is
// the repair path for ErrDirtySchema.
func (m *Migrator) Force(version int) error {
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version: %w", err)
	}
	m.logger.Warn("schema version forced", "version", version)
	return nil
}

// Close releases the source and the database driver.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	if srcErr != nil {
		return fmt.Errorf("close source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close database: %w", dbErr)
	}
	return nil
}
