package notify

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{
			name: "valid",
			msg:  Message{To: []string{"ops@example.com"}, Subject: "[HIGH] CPU"},
		},
		{
			name:    "no recipients",
			msg:     Message{Subject: "[HIGH] CPU"},
			wantErr: ErrNoRecipients,
		},
		{
			name:    "blank subject",
			msg:     Message{To: []string{"ops@example.com"}, Subject: "   "},
			wantErr: ErrEmptySubject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sender.Send(context.Background(), Message{
		From:    "alerts@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "[CRITICAL] Disk full",
		Text:    "disk at 99%",
	})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "email notification")
	assert.Contains(t, output, "a@example.com,b@example.com")
	assert.Contains(t, output, "[CRITICAL] Disk full")
	assert.Equal(t, ProviderLog, sender.Name())
}

func TestLogSender_Send_RejectsInvalid(t *testing.T) {
	sender := NewLogSender(slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := sender.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}
