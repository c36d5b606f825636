package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultResendBaseURL = "https://api.resend.com"

type resendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resendEmailRequest struct {
	From    string      `json:"from"`
	To      []string    `json:"to"`
	Subject string      `json:"subject"`
	Text    string      `json:"text,omitempty"`
	HTML    string      `json:"html,omitempty"`
	Tags    []resendTag `json:"tags,omitempty"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// ResendSender delivers email through the Resend HTTP API.
type ResendSender struct {
	client *resty.Client
	from   string
}

func NewResendSender(baseURL, apiKey, from string) *ResendSender {
	if baseURL == "" {
		baseURL = defaultResendBaseURL
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetTimeout(10 * time.Second)
	client.SetAuthToken(apiKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("User-Agent", "fitr-admin/1.0")

	return &ResendSender{client: client, from: from}
}

func (s *ResendSender) Name() string { return ProviderResend }

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = s.from
	}

	body := resendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	}
	for name, value := range msg.Tags {
		body.Tags = append(body.Tags, resendTag{Name: name, Value: value})
	}

	var (
		result  resendEmailResponse
		failure resendErrorResponse
	)
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&failure).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}

	if resp.IsError() {
		switch resp.StatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("resend: %s: %w", failure.Message, ErrInvalidCredentials)
		case http.StatusUnprocessableEntity, http.StatusBadRequest:
			return fmt.Errorf("resend: %s: %w", failure.Message, ErrRejected)
		default:
			return fmt.Errorf("resend: unexpected status %d: %s", resp.StatusCode(), failure.Message)
		}
	}

	return nil
}
