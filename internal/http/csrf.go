package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultCSRFCookie = "forum_csrf"
	// CSRFField is the hidden form field every state-changing form carries.
	CSRFField = "csrf_token"
	// CSRFHeader is how htmx requests submit the token.
	CSRFHeader = "X-Csrf-Token"

	csrfTokenBytes = 32
	msgCSRFFailed  = "This form has expired. Please go back, reload the page and try again."
)

// CSRFConfig describes the double-submit cookie.
type CSRFConfig struct {
	CookieName string
	Domain     string
	TTL        time.Duration
	// Secure forces the Secure attribute; it is also set for TLS or
	// X-Forwarded-Proto: https requests.
	Secure bool
}

// CSRFProtection guards every non-safe request with a double-submit token.
// The token lives in a SameSite=Strict cookie and must come back either as
// the csrf_token form field or the X-Csrf-Token header. A cross-site page can
// make the browser send the cookie (or none at all) but cannot read it, so it
// cannot supply the matching value.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCSRFCookie
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := csrfCookie(r, cfg.CookieName)
			if token == "" && !safeMethod(r.Method) {
				// Nothing to compare against; a fresh token could not match either.
				http.Error(w, msgCSRFFailed, http.StatusForbidden)
				return
			}
			if token == "" {
				var err error
				if token, err = newCSRFToken(); err != nil {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Domain:   cfg.Domain,
					MaxAge:   int(cfg.TTL / time.Second),
					HttpOnly: true,
					Secure:   cfg.Secure || r.TLS != nil || forwardedHTTPS(r),
					SameSite: http.SameSiteStrictMode,
				})
			}

			if !safeMethod(r.Method) && !csrfMatches(r, token) {
				http.Error(w, msgCSRFFailed, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func csrfCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// forwardedHTTPS reads the first hop of X-Forwarded-Proto ("https,http").
func forwardedHTTPS(r *http.Request) bool {
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// csrfMatches compares the submitted token with the cookie in constant time.
// Only form-encoded bodies are parsed; views read the same parsed form later.
func csrfMatches(r *http.Request, want string) bool {
	got := r.Header.Get(CSRFHeader)
	if got == "" {
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
			if err := r.ParseForm(); err != nil {
				return false
			}
			got = r.PostFormValue(CSRFField)
		}
	}
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

type csrfKey struct{}

// CSRFToken returns the token for forms rendered in response to r.
func CSRFToken(r *http.Request) string {
	tok, _ := r.Context().Value(csrfKey{}).(string)
	return tok
}
