package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Log(t *testing.T) {
	tests := []struct {
		name          string
		event         Event
		wantEventType string
		wantActor     string
		wantHasError  bool
		wantAlertID   bool
	}{
		{
			name: "alert created by monitor",
			event: Event{
				EventType: EventAlertCreated,
				Actor:     "system",
				AlertID:   "alert_1700000000000_a1b2c3d4e",
				Success:   true,
				Metadata:  map[string]string{"severity": "high"},
			},
			wantEventType: string(EventAlertCreated),
			wantActor:     "system",
			wantAlertID:   true,
		},
		{
			name: "alert acknowledged by admin",
			event: Event{
				EventType: EventAlertAcknowledged,
				Actor:     "user_admin",
				AlertID:   "alert_1700000000001_f9e8d7c6b",
				Success:   true,
			},
			wantEventType: string(EventAlertAcknowledged),
			wantActor:     "user_admin",
			wantAlertID:   true,
		},
		{
			name: "failed notification",
			event: Event{
				EventType: EventAlertNotified,
				Actor:     "system",
				Success:   false,
				Error:     "smtp relay unavailable",
			},
			wantEventType: string(EventAlertNotified),
			wantActor:     "system",
			wantHasError:  true,
		},
		{
			name: "settings reset",
			event: Event{
				EventType: EventSettingsReset,
				Actor:     "user_admin",
				Success:   true,
				IPAddress: "10.0.0.4",
			},
			wantEventType: string(EventSettingsReset),
			wantActor:     "user_admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			auditLogger := NewSlogLogger(logger)
			err := auditLogger.Log(context.Background(), tt.event)
			require.NoError(t, err)

			output := buf.String()
			assert.Contains(t, output, tt.wantEventType)
			assert.Contains(t, output, tt.wantActor)
			assert.Contains(t, output, "audit_event")
			assert.Contains(t, output, "audit")

			if tt.wantHasError {
				assert.Contains(t, output, tt.event.Error)
			}
			if tt.wantAlertID {
				assert.Contains(t, output, tt.event.AlertID)
			}
		})
	}
}

func TestSlogLogger_Log_GeneratesIDAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := auditLogger.Log(context.Background(), Event{
		EventType: EventSettingsUpdated,
		Actor:     "user_admin",
		Success:   true,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &logEntry))

	eventID, ok := logEntry["event_id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(eventID)
	assert.NoError(t, err)

	var data Event
	require.NoError(t, json.Unmarshal([]byte(logEntry["event_data"].(string)), &data))
	assert.False(t, data.Timestamp.IsZero())
}

func TestSlogLogger_Log_UsesProvidedID(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	expectedID := uuid.New()

	err := auditLogger.Log(context.Background(), Event{
		ID:        expectedID,
		Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		EventType: EventAlertDeleted,
		Success:   true,
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), expectedID.String())
	assert.Contains(t, buf.String(), "2024-01-15T10:30:00Z")
}

func TestNoOpLogger_Log(t *testing.T) {
	logger := &NoOpLogger{}

	for i := 0; i < 10; i++ {
		err := logger.Log(context.Background(), Event{EventType: EventAlertResolved})
		assert.NoError(t, err)
	}
}

func TestLoggerInterface_Compliance(t *testing.T) {
	var _ Logger = (*SlogLogger)(nil)
	var _ Logger = (*NoOpLogger)(nil)
}

func TestEvent_JSONSerialization_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Event{EventType: EventAlertCreated, Success: true})
	require.NoError(t, err)

	jsonStr := string(data)
	assert.NotContains(t, jsonStr, "actor")
	assert.NotContains(t, jsonStr, "alert_id")
	assert.NotContains(t, jsonStr, "error")
	assert.NotContains(t, jsonStr, "ip_address")
}
