package config

import (
	"log/slog"
	"strings"
)

// ObservabilityConfig groups configuration that controls logging and metrics.
type ObservabilityConfig struct {
	Logging LoggingConfig
	Metrics ObservabilityMetricsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize(isDev bool) {
	c.Logging.Sanitize(isDev)
	c.Metrics.Sanitize()
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:""`
}

// Sanitize picks text output in dev and JSON otherwise unless set explicitly.
func (c *LoggingConfig) Sanitize(isDev bool) {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format != "json" && c.Format != "text" {
		c.Format = "json"
		if isDev {
			c.Format = "text"
		}
	}
}

// SlogLevel maps Level to a slog.Level, defaulting to info.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ObservabilityMetricsConfig controls emission of metrics to StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"forumweb"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}
