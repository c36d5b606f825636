package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forkintheroad/fitr-admin/internal/config"
	"github.com/forkintheroad/fitr-admin/internal/webhook"
)

const (
	ProviderLog     = "log"
	ProviderResend  = "resend"
	ProviderSES     = "ses"
	ProviderWebhook = "webhook"
)

// NewSender creates the Sender selected by EMAIL_PROVIDER.
//
// Environment variables:
//   - EMAIL_PROVIDER: "log", "resend", "ses" or "webhook" (default: "log")
//   - EMAIL_FROM: sender address for every provider
//   - RESEND_API_KEY, RESEND_BASE_URL: Resend credentials
//   - AWS_REGION: SES region (credentials via the AWS SDK chain)
//   - EMAIL_WEBHOOK_URL, EMAIL_WEBHOOK_SECRET: signed relay endpoint
func NewSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Sender, error) {
	switch cfg.EmailProvider {
	case ProviderLog, "":
		return NewLogSender(logger), nil

	case ProviderResend:
		return NewResendSender(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.EmailFrom), nil

	case ProviderSES:
		sender, err := NewSESSender(ctx, cfg.AWSRegion, cfg.EmailFrom)
		if err != nil {
			return nil, fmt.Errorf("create ses sender: %w", err)
		}
		return sender, nil

	case ProviderWebhook:
		return NewWebhookSender(webhook.NewService(), cfg.EmailWebhookURL, cfg.EmailWebhookSecret, cfg.EmailFrom), nil

	default:
		return nil, fmt.Errorf("unknown email provider: %s (supported: %s, %s, %s, %s)",
			cfg.EmailProvider, ProviderLog, ProviderResend, ProviderSES, ProviderWebhook)
	}
}
