package notify

import (
	"context"
	"fmt"

	"github.com/forkintheroad/fitr-admin/internal/webhook"
)

const webhookEventEmail = "notification.email"

type webhookEmail struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	Text    string            `json:"text,omitempty"`
	HTML    string            `json:"html,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// WebhookSender relays messages as signed JSON events to an HTTP endpoint.
type WebhookSender struct {
	service  *webhook.Service
	endpoint webhook.Endpoint
	from     string
}

func NewWebhookSender(service *webhook.Service, url, secret, from string) *WebhookSender {
	return &WebhookSender{
		service:  service,
		endpoint: webhook.Endpoint{URL: url, Secret: secret},
		from:     from,
	}
}

func (s *WebhookSender) Name() string { return ProviderWebhook }

func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = s.from
	}

	err := s.service.Send(ctx, s.endpoint, webhook.EventPayload{
		Type: webhookEventEmail,
		Data: webhookEmail{
			From:    from,
			To:      msg.To,
			Subject: msg.Subject,
			Text:    msg.Text,
			HTML:    msg.HTML,
			Tags:    msg.Tags,
		},
	})
	if err != nil {
		return fmt.Errorf("webhook relay: %w", err)
	}
	return nil
}
