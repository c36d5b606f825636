package webhook

import (
	"fmt"
	"time"
)

// Endpoint is a receiver of signed event deliveries.
type Endpoint struct {
	URL    string
	Secret string
}

// EventPayload is the JSON envelope posted to an endpoint.
type EventPayload struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// DeliveryError reports a non-2xx response from an endpoint.
type DeliveryError struct {
	StatusCode int
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook endpoint responded with HTTP %d", e.StatusCode)
}
