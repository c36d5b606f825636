package settings

import (
	"encoding/json"
	"math"
	"regexp"

	"github.com/forkintheroad/fitr-admin/internal/domain"
)

const (
	msgRateLimiting   = "Rate limiting values must be positive numbers"
	msgCostThresholds = "Cost alert thresholds must be non-negative numbers"
	msgResponseTime   = "Response time threshold must be a non-negative number"
	msgErrorRate      = "Error rate threshold must be between 0 and 100"
	msgSystemAlerts   = "System alert thresholds must be between 0 and 100"
	msgRecipientsType = "Email recipients must be an array"
	msgInvalidEmail   = "Invalid email address: "
)

// maxLimit bounds stored counts so they always fit the int fields they land in.
const maxLimit = math.MaxInt32

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the subtrees present in p in a fixed order (rate limiting,
// cost, performance, system, notifications) and returns the first violation
// as a 400 AppError carrying its specific message.
func Validate(p *Patch) error {
	if p == nil {
		return domain.ErrInvalidSettings
	}

	checks := []func(*Patch) string{
		checkRateLimiting,
		checkCostAlerts,
		checkPerformanceAlerts,
		checkSystemAlerts,
		checkNotifications,
	}
	for _, check := range checks {
		if msg := check(p); msg != "" {
			return domain.NewValidationError(msg)
		}
	}
	return nil
}

func checkRateLimiting(p *Patch) string {
	if rl := p.RateLimiting; rl != nil {
		for _, n := range []Number{rl.RequestsPerMinute, rl.RequestsPerHour, rl.RequestsPerDay, rl.BurstLimit} {
			if n.Set && (!n.isInteger() || n.Value < 1 || n.Value > maxLimit) {
				return msgRateLimiting
			}
		}
	}
	if keys := p.APIKeys; keys != nil {
		for _, q := range []*QuotaPatch{keys.GooglePlaces, keys.GoogleMaps} {
			if q == nil {
				continue
			}
			for _, n := range []Number{q.DailyLimit, q.MonthlyLimit} {
				if n.Valid && math.Abs(n.Value) > maxLimit {
					return msgRateLimiting
				}
			}
		}
	}
	return ""
}

func checkCostAlerts(p *Patch) string {
	if p.AlertThresholds == nil || p.AlertThresholds.CostAlerts == nil {
		return ""
	}
	c := p.AlertThresholds.CostAlerts
	for _, n := range []Number{c.DailyThreshold, c.MonthlyThreshold} {
		if n.Set && (!n.Valid || n.Value < 0) {
			return msgCostThresholds
		}
	}
	return ""
}

func checkPerformanceAlerts(p *Patch) string {
	if p.AlertThresholds == nil || p.AlertThresholds.PerformanceAlerts == nil {
		return ""
	}
	perf := p.AlertThresholds.PerformanceAlerts
	if n := perf.ResponseTimeThreshold; n.Set && (!n.Valid || n.Value < 0) {
		return msgResponseTime
	}
	if n := perf.ErrorRateThreshold; n.Set && !inPercentRange(n) {
		return msgErrorRate
	}
	return ""
}

func checkSystemAlerts(p *Patch) string {
	if p.AlertThresholds == nil || p.AlertThresholds.SystemAlerts == nil {
		return ""
	}
	sys := p.AlertThresholds.SystemAlerts
	for _, n := range []Number{sys.CPUThreshold, sys.MemoryThreshold, sys.DiskThreshold} {
		if n.Set && !inPercentRange(n) {
			return msgSystemAlerts
		}
	}
	return ""
}

func checkNotifications(p *Patch) string {
	if p.NotificationSettings == nil || p.NotificationSettings.Email == nil {
		return ""
	}
	recipients := p.NotificationSettings.Email.Recipients
	if !recipients.Set {
		return ""
	}
	if !recipients.IsArray {
		return msgRecipientsType
	}
	for i, raw := range recipients.Raw {
		var address string
		if err := json.Unmarshal(raw, &address); err != nil {
			return msgInvalidEmail + string(raw)
		}
		if !emailPattern.MatchString(recipients.Values[i]) {
			return msgInvalidEmail + address
		}
	}
	return ""
}

func inPercentRange(n Number) bool {
	return n.Valid && n.Value >= 0 && n.Value <= 100
}
