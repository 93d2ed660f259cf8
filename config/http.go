package config

import (
	"strings"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for the client scope cookie.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookieSecure forces the Secure attribute on cookies even over plain HTTP
	// (for deployments behind a TLS-terminating proxy).
	CookieSecure bool `env:"APP_COOKIE_SECURE" envDefault:"false"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    envDefault:"15s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.Addr = strings.TrimSpace(h.Addr)
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 10 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 15 * time.Second
	}
}

// RoutesConfig names the guard redirect targets.
type RoutesConfig struct {
	LoginPath   string `env:"ROUTES_LOGIN_PATH"   envDefault:"/login"`
	LandingPath string `env:"ROUTES_LANDING_PATH" envDefault:"/forums"`
}

// Sanitize keeps both targets as local absolute paths.
func (r *RoutesConfig) Sanitize() {
	r.LoginPath = localPath(r.LoginPath, "/login")
	r.LandingPath = localPath(r.LandingPath, "/forums")
}

func localPath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return fallback
	}
	return p
}

// RateLimitConfig throttles login and registration attempts per client scope.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	// PerMinute is the sustained number of attempts allowed.
	PerMinute float64 `env:"RATE_LIMIT_AUTH_PER_MINUTE" envDefault:"10"`
	Burst     int     `env:"RATE_LIMIT_AUTH_BURST"      envDefault:"5"`
	// IPPerMinute and IPBurst bound one client address across all scopes.
	IPPerMinute float64 `env:"RATE_LIMIT_IP_PER_MINUTE" envDefault:"30"`
	IPBurst     int     `env:"RATE_LIMIT_IP_BURST"      envDefault:"15"`
	// ClientIPHeader is trusted only when set; use it behind a reverse proxy
	// that overwrites or appends to it (X-Forwarded-For, X-Real-IP).
	ClientIPHeader string `env:"RATE_LIMIT_CLIENT_IP_HEADER" envDefault:""`
	// MaxClients bounds the number of tracked limiters.
	MaxClients int `env:"RATE_LIMIT_MAX_CLIENTS" envDefault:"10000"`
}

// Sanitize clamps limits to usable values.
func (r *RateLimitConfig) Sanitize() {
	if r.PerMinute <= 0 {
		r.PerMinute = 10
	}
	if r.Burst < 1 {
		r.Burst = 1
	}
	if r.IPPerMinute <= 0 {
		r.IPPerMinute = 3 * r.PerMinute
	}
	if r.IPBurst < 1 {
		r.IPBurst = 3 * r.Burst
	}
	r.ClientIPHeader = strings.TrimSpace(r.ClientIPHeader)
	if r.MaxClients < 1 {
		r.MaxClients = 10000
	}
}
