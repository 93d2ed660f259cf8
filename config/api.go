package config

import (
	"strings"
	"time"
)

const defaultAPIBaseURL = "http://localhost:8000/api/v1"

// APIConfig points the gateway at the forum backend.
type APIConfig struct {
	// BaseURL is the REST API root, e.g. "https://api.example.com/api/v1".
	BaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api/v1"`
	Timeout time.Duration `env:"API_TIMEOUT"  envDefault:"15s"`
}

// Sanitize trims the base URL and restores defaults for unusable values.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultAPIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}
