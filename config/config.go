package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: backend REST API client
//   - http.go: HTTP server, routes and rate limiting
//   - redis.go: Redis connection for durable token storage
//   - session.go: session storage and live-session registry
//   - observability.go: logging and metrics
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, text logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	API       APIConfig
	HTTP      HTTPConfig
	Routes    RoutesConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig `envPrefix:"REDIS_"`
	Session   SessionConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.API.Sanitize()
	c.HTTP.Sanitize()
	c.Routes.Sanitize()
	c.RateLimit.Sanitize()
	c.Session.Sanitize()
	c.Observability.Sanitize(c.IsDev)
}

// Validate reports configuration that cannot be used. Call it after Sanitize.
func (c *AppConfig) Validate() error {
	return c.Session.Validate()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
