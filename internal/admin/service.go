package admin

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Pinger is the slice of the database pool used by health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service reports the health and runtime metrics of the admin API process.
type Service struct {
	db        Pinger
	pool      *pgxpool.Pool
	version   string
	startedAt time.Time
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new admin system service backed by a pgx pool
func NewService(pool *pgxpool.Pool, version string, logger *slog.Logger) *Service {
	s := NewServiceWithDB(pool, version, logger)
	s.pool = pool
	return s
}

// NewServiceWithDB creates a service with a custom database (for testing)
func NewServiceWithDB(db Pinger, version string, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		version:   version,
		startedAt: time.Now(),
		logger:    logger,
		now:       time.Now,
	}
}

// GetSystemHealth checks the database and reports uptime and build version.
func (s *Service) GetSystemHealth(ctx context.Context) (*SystemHealth, error) {
	health := &SystemHealth{
		Status:  StatusHealthy,
		Version: s.version,
		Uptime:  s.now().Sub(s.startedAt).Truncate(time.Second).String(),
	}

	health.Database = s.checkDatabaseHealth(ctx)
	if health.Database.Status != StatusHealthy {
		health.Status = StatusDegraded
	}

	return health, nil
}

func (s *Service) checkDatabaseHealth(ctx context.Context) ServiceHealth {
	if s.db == nil {
		return ServiceHealth{Status: StatusUnhealthy, Latency: "N/A", Message: "database not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := s.now()
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("database health check failed", "error", err)
		return ServiceHealth{
			Status:  StatusUnhealthy,
			Latency: "N/A",
			Message: err.Error(),
		}
	}

	return ServiceHealth{
		Status:  StatusHealthy,
		Latency: s.now().Sub(start).String(),
	}
}

// GetSystemMetrics retrieves Go runtime and connection pool metrics
func (s *Service) GetSystemMetrics(_ context.Context) (*SystemMetrics, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := &SystemMetrics{
		Memory: MemoryMetrics{
			Alloc:      memStats.Alloc,
			TotalAlloc: memStats.TotalAlloc,
			Sys:        memStats.Sys,
			NumGC:      memStats.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
	}

	if s.pool != nil {
		stat := s.pool.Stat()
		metrics.DBConnections = &DBConnMetrics{
			TotalConns: stat.TotalConns(),
			IdleConns:  stat.IdleConns(),
			MaxConns:   stat.MaxConns(),
		}
	}

	return metrics, nil
}
