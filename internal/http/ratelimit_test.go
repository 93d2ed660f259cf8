package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mhsn/forumweb/internal/ports"
)

func TestKeyedLimitersBurstAndRefill(t *testing.T) {
	l := newKeyedLimiters(60, 2, 10)
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	assert.True(t, l.allow("a", now))
	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))
	assert.True(t, l.allow("b", now), "keys do not share buckets")

	assert.True(t, l.allow("a", now.Add(time.Second)))
}

func TestKeyedLimitersBounded(t *testing.T) {
	l := newKeyedLimiters(1, 1, 2)
	now := time.Now()

	l.allow("a", now)
	l.allow("b", now)
	l.allow("c", now)
	assert.Equal(t, 2, l.len())

	// "a" was evicted, so it starts with a fresh bucket.
	assert.True(t, l.allow("a", now))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		header string
		value  string
		want   string
	}{
		{name: "connection address", remote: "203.0.113.7:51234", want: "203.0.113.7"},
		{name: "header ignored unless configured", remote: "10.0.0.2:80", value: "198.51.100.1", want: "10.0.0.2"},
		{name: "trusted header", remote: "10.0.0.2:80", header: "X-Real-IP", value: "198.51.100.1", want: "198.51.100.1"},
		{name: "right-most forwarded entry", remote: "10.0.0.2:80", header: "X-Forwarded-For", value: "1.2.3.4, 198.51.100.1", want: "198.51.100.1"},
		{name: "garbage header falls back", remote: "10.0.0.2:80", header: "X-Real-IP", value: "not-an-ip", want: "10.0.0.2"},
		{name: "ipv6", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = tt.remote
			if tt.value != "" {
				req.Header.Set("X-Real-IP", tt.value)
				req.Header.Set("X-Forwarded-For", tt.value)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.header))
		})
	}
}

func serveLimited(h http.Handler, method, scope, remote string) int {
	req := httptest.NewRequest(method, "/login", nil)
	req.RemoteAddr = remote
	req = req.WithContext(ports.WithScope(req.Context(), scope))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitAuthOnlyLimitsPosts(t *testing.T) {
	h := RateLimitAuth(RateLimitConfig{Enabled: true, PerMinute: 1, Burst: 1, MaxClients: 10})(okHandler())

	assert.Equal(t, http.StatusOK, serveLimited(h, http.MethodPost, "tab", "192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, serveLimited(h, http.MethodPost, "tab", "192.0.2.1:1000"))
	assert.Equal(t, http.StatusOK, serveLimited(h, http.MethodGet, "tab", "192.0.2.1:1000"))
}

func TestRateLimitAuthFreshScopesShareAddressBucket(t *testing.T) {
	h := RateLimitAuth(RateLimitConfig{Enabled: true, PerMinute: 1, Burst: 5, IPPerMinute: 1, IPBurst: 3, MaxClients: 100})(okHandler())

	codes := make([]int, 0, 5)
	for i := range 5 {
		scope := string(rune('a' + i))
		codes = append(codes, serveLimited(h, http.MethodPost, scope, "192.0.2.1:1000"))
	}
	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)

	assert.Equal(t, http.StatusOK, serveLimited(h, http.MethodPost, "z", "192.0.2.99:1000"), "other addresses are unaffected")
}

func TestRateLimitAuthDisabled(t *testing.T) {
	h := RateLimitAuth(RateLimitConfig{})(okHandler())
	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
