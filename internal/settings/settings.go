// Package settings holds the admin system settings: rate limits, provider
// quotas, alert thresholds, notification routing and maintenance windows.
package settings

import "time"

type Settings struct {
	RateLimiting         RateLimiting         `json:"rateLimiting"`
	APIKeys              APIKeyQuotas         `json:"apiKeys"`
	AlertThresholds      AlertThresholds      `json:"alertThresholds"`
	NotificationSettings NotificationSettings `json:"notificationSettings"`
	Maintenance          Maintenance          `json:"maintenance"`
}

type RateLimiting struct {
	RequestsPerMinute int `json:"requestsPerMinute"`
	RequestsPerHour   int `json:"requestsPerHour"`
	RequestsPerDay    int `json:"requestsPerDay"`
	BurstLimit        int `json:"burstLimit"`
}

type APIKeyQuotas struct {
	GooglePlaces Quota `json:"googlePlaces"`
	GoogleMaps   Quota `json:"googleMaps"`
}

type Quota struct {
	DailyLimit   int `json:"dailyLimit"`
	MonthlyLimit int `json:"monthlyLimit"`
}

type AlertThresholds struct {
	CostAlerts        CostAlerts        `json:"costAlerts"`
	PerformanceAlerts PerformanceAlerts `json:"performanceAlerts"`
	SystemAlerts      SystemAlerts      `json:"systemAlerts"`
}

type CostAlerts struct {
	DailyThreshold   float64 `json:"dailyThreshold"`
	MonthlyThreshold float64 `json:"monthlyThreshold"`
}

type PerformanceAlerts struct {
	ResponseTimeThreshold float64 `json:"responseTimeThreshold"`
	ErrorRateThreshold    float64 `json:"errorRateThreshold"`
}

type SystemAlerts struct {
	CPUThreshold    float64 `json:"cpuThreshold"`
	MemoryThreshold float64 `json:"memoryThreshold"`
	DiskThreshold   float64 `json:"diskThreshold"`
}

type NotificationSettings struct {
	Email   EmailNotifications   `json:"email"`
	SMS     SMSNotifications     `json:"sms"`
	Webhook WebhookNotifications `json:"webhook"`
}

type EmailNotifications struct {
	Enabled    bool     `json:"enabled"`
	Recipients []string `json:"recipients"`
	Frequency  string   `json:"frequency"`
}

type SMSNotifications struct {
	Enabled    bool     `json:"enabled"`
	Recipients []string `json:"recipients"`
}

type WebhookNotifications struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

type Maintenance struct {
	Enabled        bool       `json:"enabled"`
	Message        string     `json:"message"`
	ScheduledStart *time.Time `json:"scheduledStart"`
	ScheduledEnd   *time.Time `json:"scheduledEnd"`
}

// Defaults returns the factory settings restored by a reset.
func Defaults() Settings {
	return Settings{
		RateLimiting: RateLimiting{
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
			RequestsPerDay:    10000,
			BurstLimit:        10,
		},
		APIKeys: APIKeyQuotas{
			GooglePlaces: Quota{DailyLimit: 1000, MonthlyLimit: 30000},
			GoogleMaps:   Quota{DailyLimit: 5000, MonthlyLimit: 150000},
		},
		AlertThresholds: AlertThresholds{
			CostAlerts: CostAlerts{
				DailyThreshold:   10,
				MonthlyThreshold: 300,
			},
			PerformanceAlerts: PerformanceAlerts{
				ResponseTimeThreshold: 2000,
				ErrorRateThreshold:    5,
			},
			SystemAlerts: SystemAlerts{
				CPUThreshold:    80,
				MemoryThreshold: 85,
				DiskThreshold:   90,
			},
		},
		NotificationSettings: NotificationSettings{
			Email: EmailNotifications{
				Enabled:    true,
				Recipients: []string{},
				Frequency:  "immediate",
			},
			SMS: SMSNotifications{
				Recipients: []string{},
			},
		},
		Maintenance: Maintenance{
			Message: "System is under maintenance. Please try again later.",
		},
	}
}

// InMaintenance reports whether a maintenance window covers now. An enabled
// window without bounds is open-ended.
func (s Settings) InMaintenance(now time.Time) bool {
	m := s.Maintenance
	if !m.Enabled {
		return false
	}
	if m.ScheduledStart != nil && now.Before(*m.ScheduledStart) {
		return false
	}
	if m.ScheduledEnd != nil && !now.Before(*m.ScheduledEnd) {
		return false
	}
	return true
}

// EmailRecipients returns the alert email recipients, or nil when email
// notifications are disabled.
func (s Settings) EmailRecipients() []string {
	if !s.NotificationSettings.Email.Enabled {
		return nil
	}
	out := make([]string, len(s.NotificationSettings.Email.Recipients))
	copy(out, s.NotificationSettings.Email.Recipients)
	return out
}

func (s Settings) clone() Settings {
	c := s
	c.NotificationSettings.Email.Recipients = append([]string{}, s.NotificationSettings.Email.Recipients...)
	c.NotificationSettings.SMS.Recipients = append([]string{}, s.NotificationSettings.SMS.Recipients...)
	if s.Maintenance.ScheduledStart != nil {
		start := *s.Maintenance.ScheduledStart
		c.Maintenance.ScheduledStart = &start
	}
	if s.Maintenance.ScheduledEnd != nil {
		end := *s.Maintenance.ScheduledEnd
		c.Maintenance.ScheduledEnd = &end
	}
	return c
}
