package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Admin auth
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"fitr-admin"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// Alerts
	AlertStore           string        `envconfig:"ALERT_STORE" default:"memory"`
	AlertEmailRecipients []string      `envconfig:"ALERT_EMAIL_RECIPIENTS"`
	AlertCooldown        time.Duration `envconfig:"ALERT_COOLDOWN" default:"30m"`

	// Email delivery
	EmailProvider      string `envconfig:"EMAIL_PROVIDER" default:"log"`
	EmailFrom          string `envconfig:"EMAIL_FROM" default:"alerts@forkintheroad.app"`
	ResendAPIKey       string `envconfig:"RESEND_API_KEY"`
	ResendBaseURL      string `envconfig:"RESEND_BASE_URL" default:"https://api.resend.com"`
	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	EmailWebhookURL    string `envconfig:"EMAIL_WEBHOOK_URL"`
	EmailWebhookSecret string `envconfig:"EMAIL_WEBHOOK_SECRET"`

	// Settings
	SettingsStore string `envconfig:"SETTINGS_STORE" default:"memory"`

	// Workers
	AnalyticsCacheTTL time.Duration `envconfig:"ANALYTICS_CACHE_TTL" default:"1m"`
	MonitorInterval   time.Duration `envconfig:"MONITOR_INTERVAL" default:"1m"`
	CostCheckInterval time.Duration `envconfig:"COST_CHECK_INTERVAL" default:"15m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.AlertStore {
	case "memory", "postgres":
	default:
		return fmt.Errorf("ALERT_STORE must be memory or postgres, got %q", c.AlertStore)
	}

	switch c.SettingsStore {
	case "memory", "postgres":
	default:
		return fmt.Errorf("SETTINGS_STORE must be memory or postgres, got %q", c.SettingsStore)
	}

	switch c.EmailProvider {
	case "log", "ses":
	case "resend":
		if c.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when EMAIL_PROVIDER=resend")
		}
	case "webhook":
		if c.EmailWebhookURL == "" {
			return fmt.Errorf("EMAIL_WEBHOOK_URL is required when EMAIL_PROVIDER=webhook")
		}
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be one of log, resend, ses, webhook, got %q", c.EmailProvider)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
