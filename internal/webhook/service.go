package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Service delivers signed JSON events. Each Send is a single attempt.
type Service struct {
	client *http.Client
	now    func() time.Time
}

func NewService() *Service {
	return NewServiceWithClient(&http.Client{
		Timeout: 10 * time.Second,
	})
}

func NewServiceWithClient(client *http.Client) *Service {
	return &Service{
		client: client,
		now:    time.Now,
	}
}

func (s *Service) Send(ctx context.Context, endpoint Endpoint, event EventPayload) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ts := s.now().Unix()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, event.Type)
	req.Header.Set(TimestampHeader, strconv.FormatInt(ts, 10))
	req.Header.Set("User-Agent", "FITR-Admin-Webhook/1.0")
	if endpoint.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(endpoint.Secret, ts, payload))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return &DeliveryError{StatusCode: resp.StatusCode}
	}

	return nil
}
