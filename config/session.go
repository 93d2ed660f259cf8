package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageKind selects the durable token storage adapter.
type StorageKind string

const (
	StorageRedis  StorageKind = "redis"
	StorageMemory StorageKind = "memory"
)

// SessionConfig controls token storage and the live-session registry.
type SessionConfig struct {
	// Storage is "redis" (shared across instances) or "memory" (single instance, dev).
	Storage StorageKind `env:"SESSION_STORAGE" envDefault:"redis"`

	// TokenKey is the fixed key the token is stored under within a client scope.
	TokenKey string `env:"SESSION_TOKEN_KEY" envDefault:"token"`
	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"forumweb:scope:"`
	// TokenTTL expires stored tokens; zero keeps them until logout.
	TokenTTL time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"0s"`

	// ScopeCookie names the HttpOnly cookie that identifies a browser.
	ScopeCookie    string        `env:"SESSION_SCOPE_COOKIE"     envDefault:"forum_scope"`
	ScopeCookieTTL time.Duration `env:"SESSION_SCOPE_COOKIE_TTL" envDefault:"720h"`

	BootstrapRetries    int           `env:"SESSION_BOOTSTRAP_RETRIES"     envDefault:"2"`
	BootstrapRetryDelay time.Duration `env:"SESSION_BOOTSTRAP_RETRY_DELAY" envDefault:"250ms"`

	LiveCapacity int           `env:"SESSION_LIVE_CAPACITY" envDefault:"10000"`
	LiveIdleTTL  time.Duration `env:"SESSION_LIVE_IDLE_TTL" envDefault:"30m"`
}

// Sanitize normalises values and falls back to defaults. An unrecognised
// storage kind is kept as given so Validate can report it.
func (s *SessionConfig) Sanitize() {
	s.Storage = StorageKind(strings.ToLower(strings.TrimSpace(string(s.Storage))))
	if s.Storage == "" {
		s.Storage = StorageRedis
	}
	if s.TokenKey = strings.TrimSpace(s.TokenKey); s.TokenKey == "" {
		s.TokenKey = "token"
	}
	if s.ScopeCookie = strings.TrimSpace(s.ScopeCookie); s.ScopeCookie == "" {
		s.ScopeCookie = "forum_scope"
	}
	if s.ScopeCookieTTL <= 0 {
		s.ScopeCookieTTL = 720 * time.Hour
	}
	if s.TokenTTL < 0 {
		s.TokenTTL = 0
	}
	if s.BootstrapRetries < 0 {
		s.BootstrapRetries = 0
	}
	if s.BootstrapRetryDelay < 0 {
		s.BootstrapRetryDelay = 0
	}
	if s.LiveCapacity < 1 {
		s.LiveCapacity = 10000
	}
	if s.LiveIdleTTL < 0 {
		s.LiveIdleTTL = 0
	}
}

// Validate rejects settings Sanitize cannot repair.
func (s SessionConfig) Validate() error {
	switch s.Storage {
	case StorageRedis, StorageMemory:
		return nil
	default:
		return fmt.Errorf("SESSION_STORAGE: unknown session storage %q (want %q or %q)", s.Storage, StorageRedis, StorageMemory)
	}
}
