package httpx

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mhsn/forumweb/internal/ports"
)

// ScopeCookieConfig describes the cookie that identifies one browser.
type ScopeCookieConfig struct {
	Name   string
	TTL    time.Duration
	Domain string
	// Secure forces the Secure attribute; it is also set for TLS requests.
	Secure bool
}

const defaultScopeCookie = "forum_scope"

// ClientScope gives every browser a random scope id, kept in an HttpOnly
// cookie, and tags the request context with it. Durable token storage and the
// live session are both keyed by this id.
func ClientScope(cfg ScopeCookieConfig) func(http.Handler) http.Handler {
	if cfg.Name == "" {
		cfg.Name = defaultScopeCookie
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := readScope(r, cfg.Name)
			if !ok {
				scope = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.Name,
					Value:    scope,
					Path:     "/",
					Domain:   cfg.Domain,
					MaxAge:   int(cfg.TTL / time.Second),
					HttpOnly: true,
					Secure:   cfg.Secure || r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(ports.WithScope(r.Context(), scope)))
		})
	}
}

// readScope accepts only well-formed ids so a forged cookie cannot address
// arbitrary storage keys.
func readScope(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
