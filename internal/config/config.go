// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
// It is built once at startup and handed to each component constructor;
// nothing reads the environment after Load returns.
type Config struct {
	// Port is the HTTP listen port.
	Port int `mapstructure:"PORT"`
	// GinMode is the gin mode ("release", "debug", "test").
	GinMode string `mapstructure:"GIN_MODE"`
	// DatabaseURL is the Postgres DSN. Empty selects the in-memory store
	// (development and tests only; state is lost on restart).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// StatusTTL is how long a status stays valid after its last update (e.g. "10m").
	StatusTTL string `mapstructure:"STATUS_TTL"`
	// WebhookURL is the notification sink for telemetry reports. Empty disables reporting.
	WebhookURL string `mapstructure:"WEBHOOK_URL"`
	// ReportInterval is the standard report cadence (e.g. "4h").
	ReportInterval string `mapstructure:"REPORT_INTERVAL"`
	// DebugReportInterval is the short debug cadence (e.g. "3m"). Only used
	// when DebugReportsEnabled is true.
	DebugReportInterval string `mapstructure:"DEBUG_REPORT_INTERVAL"`
	// DebugReportsEnabled toggles the debug-cadence reports.
	DebugReportsEnabled bool `mapstructure:"DEBUG_REPORTS_ENABLED"`
	// ReportPollInterval is how often the scheduler wakes to check for due reports.
	ReportPollInterval string `mapstructure:"REPORT_POLL_INTERVAL"`
	// ReportChunkDelay is the pause between webhook chunks of one report.
	ReportChunkDelay string `mapstructure:"REPORT_CHUNK_DELAY"`
	// RateLimiting toggles the per-route rate limits.
	RateLimiting bool `mapstructure:"RATE_LIMITING"`
	// CloudflareTunnel trusts CF-Connecting-IP for the client address.
	CloudflareTunnel bool `mapstructure:"CLOUDFLARE_TUNNEL"`
	// TLSCertFile and TLSKeyFile enable TLS when both are set.
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored; env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("PORT", 5000)
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("STATUS_TTL", "10m")
	v.SetDefault("WEBHOOK_URL", "")
	v.SetDefault("REPORT_INTERVAL", "4h")
	v.SetDefault("DEBUG_REPORT_INTERVAL", "3m")
	v.SetDefault("DEBUG_REPORTS_ENABLED", false)
	v.SetDefault("REPORT_POLL_INTERVAL", "2m")
	v.SetDefault("REPORT_CHUNK_DELAY", "1s")
	v.SetDefault("RATE_LIMITING", true)
	v.SetDefault("CLOUDFLARE_TUNNEL", false)
	v.SetDefault("TLS_CERT_FILE", "")
	v.SetDefault("TLS_KEY_FILE", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, errors.New("config: PORT must be between 1 and 65535")
	}

	return &cfg, nil
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// StatusTTLDuration parses StatusTTL. Returns 10m if unset or invalid.
func (c *Config) StatusTTLDuration() time.Duration {
	return durationOr(c.StatusTTL, 10*time.Minute)
}

// ReportIntervalDuration parses ReportInterval. Returns 4h if unset or invalid.
func (c *Config) ReportIntervalDuration() time.Duration {
	return durationOr(c.ReportInterval, 4*time.Hour)
}

// DebugReportIntervalDuration parses DebugReportInterval. Returns 3m if unset or invalid.
func (c *Config) DebugReportIntervalDuration() time.Duration {
	return durationOr(c.DebugReportInterval, 3*time.Minute)
}

// ReportPollIntervalDuration parses ReportPollInterval. Returns 2m if unset or invalid.
func (c *Config) ReportPollIntervalDuration() time.Duration {
	return durationOr(c.ReportPollInterval, 2*time.Minute)
}

// ReportChunkDelayDuration parses ReportChunkDelay. Returns 1s if unset or invalid.
func (c *Config) ReportChunkDelayDuration() time.Duration {
	return durationOr(c.ReportChunkDelay, time.Second)
}
