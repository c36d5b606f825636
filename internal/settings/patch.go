package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/forkintheroad/fitr-admin/internal/domain"
)

// ErrMalformedBody is returned when the request body is not parseable JSON.
var ErrMalformedBody = errors.New("malformed settings body")

// Number is a patch field that remembers whether it was present and whether
// the supplied JSON value was a number at all.
type Number struct {
	Set   bool
	Valid bool
	Value float64
}

func (n *Number) UnmarshalJSON(data []byte) error {
	n.Set = true
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		n.Value = v
		n.Valid = true
	}
	return nil
}

func (n Number) isInteger() bool {
	return n.Valid && n.Value == math.Trunc(n.Value)
}

// RecipientList accepts any JSON value so the validator can report a
// non-array or a non-string entry with its own message.
type RecipientList struct {
	Set     bool
	IsArray bool
	Values  []string
	// Raw holds each entry as received, for echoing invalid ones.
	Raw []json.RawMessage
}

func (r *RecipientList) UnmarshalJSON(data []byte) error {
	r.Set = true
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		return nil
	}

	r.IsArray = true
	r.Raw = entries
	r.Values = make([]string, 0, len(entries))
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err != nil {
			r.Values = append(r.Values, "")
			continue
		}
		r.Values = append(r.Values, s)
	}
	return nil
}

type Patch struct {
	RateLimiting         *RateLimitingPatch         `json:"rateLimiting,omitempty"`
	APIKeys              *APIKeyQuotasPatch         `json:"apiKeys,omitempty"`
	AlertThresholds      *AlertThresholdsPatch      `json:"alertThresholds,omitempty"`
	NotificationSettings *NotificationSettingsPatch `json:"notificationSettings,omitempty"`
	Maintenance          *MaintenancePatch          `json:"maintenance,omitempty"`
}

type RateLimitingPatch struct {
	RequestsPerMinute Number `json:"requestsPerMinute"`
	RequestsPerHour   Number `json:"requestsPerHour"`
	RequestsPerDay    Number `json:"requestsPerDay"`
	BurstLimit        Number `json:"burstLimit"`
}

type APIKeyQuotasPatch struct {
	GooglePlaces *QuotaPatch `json:"googlePlaces,omitempty"`
	GoogleMaps   *QuotaPatch `json:"googleMaps,omitempty"`
}

type QuotaPatch struct {
	DailyLimit   Number `json:"dailyLimit"`
	MonthlyLimit Number `json:"monthlyLimit"`
}

type AlertThresholdsPatch struct {
	CostAlerts        *CostAlertsPatch        `json:"costAlerts,omitempty"`
	PerformanceAlerts *PerformanceAlertsPatch `json:"performanceAlerts,omitempty"`
	SystemAlerts      *SystemAlertsPatch      `json:"systemAlerts,omitempty"`
}

type CostAlertsPatch struct {
	DailyThreshold   Number `json:"dailyThreshold"`
	MonthlyThreshold Number `json:"monthlyThreshold"`
}

type PerformanceAlertsPatch struct {
	ResponseTimeThreshold Number `json:"responseTimeThreshold"`
	ErrorRateThreshold    Number `json:"errorRateThreshold"`
}

type SystemAlertsPatch struct {
	CPUThreshold    Number `json:"cpuThreshold"`
	MemoryThreshold Number `json:"memoryThreshold"`
	DiskThreshold   Number `json:"diskThreshold"`
}

type NotificationSettingsPatch struct {
	Email   *EmailPatch   `json:"email,omitempty"`
	SMS     *SMSPatch     `json:"sms,omitempty"`
	Webhook *WebhookPatch `json:"webhook,omitempty"`
}

type EmailPatch struct {
	Enabled    *bool         `json:"enabled,omitempty"`
	Recipients RecipientList `json:"recipients"`
	Frequency  *string       `json:"frequency,omitempty"`
}

type SMSPatch struct {
	Enabled    *bool     `json:"enabled,omitempty"`
	Recipients *[]string `json:"recipients,omitempty"`
}

type WebhookPatch struct {
	Enabled *bool   `json:"enabled,omitempty"`
	URL     *string `json:"url,omitempty"`
}

type MaintenancePatch struct {
	Enabled        *bool      `json:"enabled,omitempty"`
	Message        *string    `json:"message,omitempty"`
	ScheduledStart *time.Time `json:"scheduledStart,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduledEnd,omitempty"`
}

// DecodeUpdate parses a `{"settings": {...}}` request body. Unparseable JSON
// yields ErrMalformedBody; a body that is not an object, or whose settings key
// is absent or not an object, yields domain.ErrInvalidSettings. The raw
// settings object is returned for echoing.
func DecodeUpdate(body []byte) (*Patch, json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, nil, ErrMalformedBody
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || envelope == nil {
		return nil, nil, domain.ErrInvalidSettings
	}

	raw, ok := envelope["settings"]
	if !ok || !isObject(raw) {
		return nil, nil, domain.ErrInvalidSettings
	}

	var patch Patch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, nil, domain.ErrInvalidSettings
	}

	return &patch, raw, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Apply merges the present, numeric fields of p into s.
func (p *Patch) Apply(s Settings) Settings {
	out := s.clone()

	if rl := p.RateLimiting; rl != nil {
		setInt(&out.RateLimiting.RequestsPerMinute, rl.RequestsPerMinute)
		setInt(&out.RateLimiting.RequestsPerHour, rl.RequestsPerHour)
		setInt(&out.RateLimiting.RequestsPerDay, rl.RequestsPerDay)
		setInt(&out.RateLimiting.BurstLimit, rl.BurstLimit)
	}

	if keys := p.APIKeys; keys != nil {
		if q := keys.GooglePlaces; q != nil {
			setInt(&out.APIKeys.GooglePlaces.DailyLimit, q.DailyLimit)
			setInt(&out.APIKeys.GooglePlaces.MonthlyLimit, q.MonthlyLimit)
		}
		if q := keys.GoogleMaps; q != nil {
			setInt(&out.APIKeys.GoogleMaps.DailyLimit, q.DailyLimit)
			setInt(&out.APIKeys.GoogleMaps.MonthlyLimit, q.MonthlyLimit)
		}
	}

	if at := p.AlertThresholds; at != nil {
		if c := at.CostAlerts; c != nil {
			setFloat(&out.AlertThresholds.CostAlerts.DailyThreshold, c.DailyThreshold)
			setFloat(&out.AlertThresholds.CostAlerts.MonthlyThreshold, c.MonthlyThreshold)
		}
		if perf := at.PerformanceAlerts; perf != nil {
			setFloat(&out.AlertThresholds.PerformanceAlerts.ResponseTimeThreshold, perf.ResponseTimeThreshold)
			setFloat(&out.AlertThresholds.PerformanceAlerts.ErrorRateThreshold, perf.ErrorRateThreshold)
		}
		if sys := at.SystemAlerts; sys != nil {
			setFloat(&out.AlertThresholds.SystemAlerts.CPUThreshold, sys.CPUThreshold)
			setFloat(&out.AlertThresholds.SystemAlerts.MemoryThreshold, sys.MemoryThreshold)
			setFloat(&out.AlertThresholds.SystemAlerts.DiskThreshold, sys.DiskThreshold)
		}
	}

	if ns := p.NotificationSettings; ns != nil {
		if e := ns.Email; e != nil {
			if e.Enabled != nil {
				out.NotificationSettings.Email.Enabled = *e.Enabled
			}
			if e.Recipients.Set && e.Recipients.IsArray {
				out.NotificationSettings.Email.Recipients = append([]string{}, e.Recipients.Values...)
			}
			if e.Frequency != nil {
				out.NotificationSettings.Email.Frequency = *e.Frequency
			}
		}
		if sms := ns.SMS; sms != nil {
			if sms.Enabled != nil {
				out.NotificationSettings.SMS.Enabled = *sms.Enabled
			}
			if sms.Recipients != nil {
				out.NotificationSettings.SMS.Recipients = append([]string{}, (*sms.Recipients)...)
			}
		}
		if wh := ns.Webhook; wh != nil {
			if wh.Enabled != nil {
				out.NotificationSettings.Webhook.Enabled = *wh.Enabled
			}
			if wh.URL != nil {
				out.NotificationSettings.Webhook.URL = *wh.URL
			}
		}
	}

	if m := p.Maintenance; m != nil {
		if m.Enabled != nil {
			out.Maintenance.Enabled = *m.Enabled
		}
		if m.Message != nil {
			out.Maintenance.Message = *m.Message
		}
		if m.ScheduledStart != nil {
			start := *m.ScheduledStart
			out.Maintenance.ScheduledStart = &start
		}
		if m.ScheduledEnd != nil {
			end := *m.ScheduledEnd
			out.Maintenance.ScheduledEnd = &end
		}
	}

	return out
}

func setInt(dst *int, n Number) {
	if n.Valid {
		*dst = int(n.Value)
	}
}

func setFloat(dst *float64, n Number) {
	if n.Valid {
		*dst = n.Value
	}
}
