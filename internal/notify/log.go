package notify

import (
	"context"
	"log/slog"
	"strings"
)

// LogSender writes messages to the application log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "notify")}
}

func (s *LogSender) Name() string { return ProviderLog }

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "email notification",
		slog.String("from", msg.From),
		slog.String("to", strings.Join(msg.To, ",")),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Text)+len(msg.HTML)),
	)
	return nil
}
