package alert

import (
	"encoding/json"
	"time"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

type Action string

const (
	ActionAcknowledge Action = "acknowledge"
	ActionResolve     Action = "resolve"
)

// Well-known alert types raised by the built-in monitors.
const (
	TypeCostThresholdExceeded = "cost_threshold_exceeded"
	TypeSystemResourceHigh    = "system_resource_high"
)

// Alert is an admin-facing record of a detected operational condition.
// Everything except the acknowledge and resolve fields is immutable.
type Alert struct {
	ID                 string                 `json:"id"`
	Type               string                 `json:"type"`
	Severity           Severity               `json:"severity"`
	Title              string                 `json:"title"`
	Message            string                 `json:"message"`
	Timestamp          time.Time              `json:"timestamp"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
	RecommendedActions []string               `json:"recommendedActions,omitempty"`

	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy string     `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`

	Resolved   bool       `json:"resolved"`
	ResolvedBy string     `json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// NewAlert is the caller-supplied part of an alert.
type NewAlert struct {
	Type               string                 `json:"type"`
	Severity           Severity               `json:"severity"`
	Title              string                 `json:"title"`
	Message            string                 `json:"message"`
	Timestamp          *EventTime             `json:"timestamp,omitempty"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
	RecommendedActions []string               `json:"recommendedActions,omitempty"`
}

// EventTime accepts RFC 3339, a few common layouts and unix milliseconds.
// Anything else decodes to the zero time, so the alert is stamped at creation.
type EventTime struct {
	time.Time
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *EventTime) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Time = time.Time{}
	switch v := raw.(type) {
	case string:
		for _, layout := range eventTimeLayouts {
			if parsed, err := time.Parse(layout, v); err == nil {
				t.Time = parsed
				return nil
			}
		}
	case float64:
		if v > 0 {
			t.Time = time.UnixMilli(int64(v))
		}
	}
	return nil
}

// Filter is a conjunction; nil or empty fields match everything.
type Filter struct {
	Severity     Severity
	Type         string
	Acknowledged *bool
	Resolved     *bool
}

const (
	DefaultLimit  = 50
	DefaultOffset = 0
)

type Page struct {
	Limit  int
	Offset int
}

type Stats struct {
	Total          int `json:"total"`
	Critical       int `json:"critical"`
	High           int `json:"high"`
	Medium         int `json:"medium"`
	Low            int `json:"low"`
	Unacknowledged int `json:"unacknowledged"`
	Unresolved     int `json:"unresolved"`
}

type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

type ListResult struct {
	Alerts     []Alert    `json:"alerts"`
	Stats      Stats      `json:"stats"`
	Pagination Pagination `json:"pagination"`
}

func (a *Alert) clone() *Alert {
	c := *a
	if a.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	if a.RecommendedActions != nil {
		c.RecommendedActions = append([]string(nil), a.RecommendedActions...)
	}
	if a.AcknowledgedAt != nil {
		t := *a.AcknowledgedAt
		c.AcknowledgedAt = &t
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}
