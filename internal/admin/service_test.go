package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_GetSystemHealth(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus string
		expectedDB     string
	}{
		{
			name:           "database reachable",
			expectedStatus: StatusHealthy,
			expectedDB:     StatusHealthy,
		},
		{
			name:           "database down",
			pingErr:        errors.New("connection refused"),
			expectedStatus: StatusDegraded,
			expectedDB:     StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewServiceWithDB(stubPinger{err: tt.pingErr}, "1.2.3", testLogger())
			started := svc.startedAt
			svc.now = func() time.Time { return started.Add(90 * time.Second) }

			health, err := svc.GetSystemHealth(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, health.Status)
			assert.Equal(t, tt.expectedDB, health.Database.Status)
			assert.Equal(t, "1.2.3", health.Version)
			assert.Equal(t, "1m30s", health.Uptime)
			if tt.pingErr != nil {
				assert.Equal(t, "connection refused", health.Database.Message)
			}
		})
	}
}

func TestService_GetSystemHealth_NoDatabase(t *testing.T) {
	svc := NewServiceWithDB(nil, "dev", testLogger())

	health, err := svc.GetSystemHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, health.Status)
	assert.Equal(t, StatusUnhealthy, health.Database.Status)
}

func TestService_GetSystemMetrics(t *testing.T) {
	svc := NewServiceWithDB(stubPinger{}, "dev", testLogger())

	metrics, err := svc.GetSystemMetrics(context.Background())
	require.NoError(t, err)
	assert.Greater(t, metrics.Goroutines, 0)
	assert.Greater(t, metrics.Memory.Sys, uint64(0))
	assert.Nil(t, metrics.DBConnections)
}
