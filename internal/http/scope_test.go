package httpx

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhsn/forumweb/internal/ports"
)

func scopeCapture(dst *string) http.Handler {
	return http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		*dst = ports.ScopeFrom(r.Context())
	})
}

func TestClientScopeIssuesCookie(t *testing.T) {
	var scope string
	h := ClientScope(ScopeCookieConfig{Name: "sid", TTL: time.Hour})(scopeCapture(&scope))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "sid", c.Name)
	assert.Equal(t, scope, c.Value)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
	_, err := uuid.Parse(scope)
	assert.NoError(t, err)
}

func TestClientScopeReusesValidCookie(t *testing.T) {
	var scope string
	h := ClientScope(ScopeCookieConfig{})(scopeCapture(&scope))
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: defaultScopeCookie, Value: id})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, scope)
	assert.Empty(t, rec.Result().Cookies())
}

func TestClientScopeReplacesForgedCookie(t *testing.T) {
	var scope string
	h := ClientScope(ScopeCookieConfig{})(scopeCapture(&scope))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: defaultScopeCookie, Value: "../../admin"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, "../../admin", scope)
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestClientScopeSecureOverTLS(t *testing.T) {
	var scope string
	h := ClientScope(ScopeCookieConfig{})(scopeCapture(&scope))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Len(t, rec.Result().Cookies(), 1)
	assert.True(t, rec.Result().Cookies()[0].Secure)
}
