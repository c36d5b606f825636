package ws

import (
	"strings"
	"time"
)

type EventType string

const (
	EventAlertCreated      EventType = "alert.created"
	EventAlertAcknowledged EventType = "alert.acknowledged"
	EventAlertResolved     EventType = "alert.resolved"
	EventAlertDeleted      EventType = "alert.deleted"
	EventSettingsUpdated   EventType = "settings.updated"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Topic is the event family, e.g. "alert" for "alert.created".
func (t EventType) Topic() string {
	topic, _, _ := strings.Cut(string(t), ".")
	return topic
}
