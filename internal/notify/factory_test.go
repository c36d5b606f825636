package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkintheroad/fitr-admin/internal/config"
)

func TestNewSender(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name     string
		cfg      *config.Config
		wantName string
	}{
		{
			name:     "default is log",
			cfg:      &config.Config{},
			wantName: ProviderLog,
		},
		{
			name:     "resend",
			cfg:      &config.Config{EmailProvider: ProviderResend, ResendAPIKey: "re_x", EmailFrom: "a@example.com"},
			wantName: ProviderResend,
		},
		{
			name:     "webhook",
			cfg:      &config.Config{EmailProvider: ProviderWebhook, EmailWebhookURL: "http://relay.local/hook"},
			wantName: ProviderWebhook,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := NewSender(context.Background(), tt.cfg, logger)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, sender.Name())
		})
	}
}

func TestNewSender_Unknown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewSender(context.Background(), &config.Config{EmailProvider: "carrier-pigeon"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown email provider")
}
