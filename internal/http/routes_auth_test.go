package httpx

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authStatus(t *testing.T, g *gateway) statusResponse {
	t.Helper()
	p := g.get("/auth/status")
	require.Equal(t, http.StatusOK, p.Status)
	var st statusResponse
	require.NoError(t, json.Unmarshal([]byte(p.Body), &st))
	return st
}

func TestSignedOutVisitor(t *testing.T) {
	g := newGateway(t)

	p := g.get("/login")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Welcome back")

	p = g.get("/profile")
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/login", p.Location)

	assert.Empty(t, g.storedToken())
	assert.Equal(t, 0, g.backend.Hits("GET /api/v1/auth/profile/"))
}

func TestLoginRendersProfile(t *testing.T) {
	g := newGateway(t)
	g.signIn()

	tok := g.storedToken()
	require.NotEmpty(t, tok)

	p := g.get("/profile")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "@alice")
	assert.Equal(t, "Token "+tok, g.backend.LastAuthorization("GET /api/v1/auth/profile/"))

	p = g.get("/login")
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/forums", p.Location)

	st := authStatus(t, g)
	assert.True(t, st.Authenticated)
	assert.Equal(t, "alice", st.User.Username)
	assert.NotContains(t, g.get("/auth/status").Body, tok)
}

func TestLoginRejected(t *testing.T) {
	g := newGateway(t)
	g.backend.AddUser("alice", "wonderland1")

	p := g.post("/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, p.Status)
	assert.Contains(t, p.Body, "Invalid credentials")
	assert.Empty(t, g.storedToken())
	assert.False(t, authStatus(t, g).Authenticated)
}

func TestLoginValidationNeverReachesBackend(t *testing.T) {
	g := newGateway(t)

	p := g.post("/login", url.Values{"username": {"  "}, "password": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Contains(t, p.Body, "Username is required")
	assert.Contains(t, p.Body, "Password is required")
	assert.Equal(t, 0, g.backend.Hits("POST /api/v1/auth/login/"))
}

func TestExpiredTokenOnProfileRedirectsToLogin(t *testing.T) {
	g := newGateway(t)
	g.signIn()
	tok := g.storedToken()

	g.backend.RevokeToken(tok)

	p := g.get("/profile")
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/login", p.Location)
	assert.Empty(t, g.storedToken())

	st := authStatus(t, g)
	assert.False(t, st.Authenticated)
	assert.Equal(t, "unauthenticated", string(st.State))

	p = g.get("/profile")
	assert.Equal(t, "/login", p.Location)
}

func TestExpiredTokenOnHTMXRequest(t *testing.T) {
	g := newGateway(t)
	g.signIn()
	g.backend.RevokeToken(g.storedToken())

	p := g.get("/profile", "Hx-Request", "true")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Equal(t, "/login", p.Header.Get("Hx-Redirect"))
	assert.Empty(t, p.Location)
}

func TestLogoutClearsStateWhenBackendUnreachable(t *testing.T) {
	g := newGateway(t)
	g.signIn()
	require.NotEmpty(t, g.storedToken())

	g.backend.Override("POST /api/v1/auth/logout/", func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetLinger(0)
		}
		_ = conn.Close()
	})

	p := g.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/", p.Location)
	assert.Empty(t, g.storedToken())
	assert.False(t, authStatus(t, g).Authenticated)
	assert.Equal(t, 1, g.backend.Hits("POST /api/v1/auth/logout/"))
}

func TestLogoutWhileSignedOutSkipsBackend(t *testing.T) {
	g := newGateway(t)

	p := g.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, 0, g.backend.Hits("POST /api/v1/auth/logout/"))
}

func TestRegister(t *testing.T) {
	g := newGateway(t)

	p := g.post("/register", url.Values{
		"username":         {"quiet_owl"},
		"password":         {"longenough"},
		"confirm_password": {"different1"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Contains(t, p.Body, "Passwords do not match")
	assert.Equal(t, 0, g.backend.Hits("POST /api/v1/auth/register/"))

	p = g.post("/register", url.Values{
		"username":         {"quiet owl"},
		"password":         {"longenough"},
		"confirm_password": {"longenough"},
		"display_name":     {strings.Repeat("x", 51)},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Contains(t, p.Body, "letters, numbers, and underscores")
	assert.Contains(t, p.Body, "Display name must be less than 51 characters")

	p = g.post("/register", url.Values{
		"username":         {"quiet_owl"},
		"password":         {"longenough"},
		"confirm_password": {"longenough"},
		"display_name":     {"Quiet Owl"},
	})
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/forums", p.Location)
	assert.NotEmpty(t, g.storedToken())

	st := authStatus(t, g)
	assert.True(t, st.Authenticated)
	assert.Equal(t, "Quiet Owl", st.User.DisplayName)
}

func TestRegisterPassesBackendFieldErrors(t *testing.T) {
	g := newGateway(t)
	g.backend.AddUser("taken_name", "whatever1")

	p := g.post("/register", url.Values{
		"username":         {"taken_name"},
		"password":         {"longenough"},
		"confirm_password": {"longenough"},
	})
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Contains(t, p.Body, "A user with that username already exists.")
	assert.Empty(t, g.storedToken())
}

func TestProfileUpdate(t *testing.T) {
	g := newGateway(t)
	g.signIn()

	p := g.post("/profile", url.Values{"display_name": {strings.Repeat("x", 51)}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Equal(t, 0, g.backend.Hits("PUT /api/v1/auth/profile/update/"))

	p = g.post("/profile", url.Values{
		"display_name":     {"Alice R."},
		"bio":              {"Here to listen."},
		"preferred_topics": {"anxiety, sleep"},
	})
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Profile updated successfully")

	st := authStatus(t, g)
	assert.Equal(t, "Alice R.", st.User.DisplayName)
	assert.Equal(t, []string{"anxiety", "sleep"}, st.User.PreferredTopics)
}

func TestDeleteAccount(t *testing.T) {
	g := newGateway(t)
	g.signIn()

	p := g.post("/profile/delete", nil)
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/", p.Location)
	assert.Empty(t, g.storedToken())
	assert.False(t, authStatus(t, g).Authenticated)
}

func TestReturningVisitorIsBootstrapped(t *testing.T) {
	g := newGateway(t)
	g.get("/")
	scope := g.scope()
	require.NotEmpty(t, scope)

	g.backend.AddUser("alice", "wonderland1")
	require.NoError(t, g.storage.Save(t.Context(), scope, g.backend.IssueToken("alice")))

	st := authStatus(t, g)
	assert.True(t, st.Authenticated)
	assert.False(t, st.Loading)
	assert.Equal(t, "alice", st.User.Username)
}

func TestRateLimitedLogin(t *testing.T) {
	g := newGateway(t, func(s *RouterServices) {
		s.RateLimit = RateLimitConfig{Enabled: true, PerMinute: 1, Burst: 2, MaxClients: 10}
	})
	g.backend.AddUser("alice", "wonderland1")
	bad := url.Values{"username": {"alice"}, "password": {"nope-nope"}}

	assert.Equal(t, http.StatusUnauthorized, g.post("/login", bad).Status)
	assert.Equal(t, http.StatusUnauthorized, g.post("/login", bad).Status)
	p := g.post("/login", bad)
	assert.Equal(t, http.StatusTooManyRequests, p.Status)
	assert.Equal(t, "60", p.Header.Get("Retry-After"))
	assert.Equal(t, 2, g.backend.Hits("POST /api/v1/auth/login/"))
	assert.Len(t, g.metrics.Named("auth.rate_limited"), 1)

	assert.Equal(t, http.StatusOK, g.get("/login").Status)
}

func TestRateLimitedLoginWithoutCookies(t *testing.T) {
	g := newGateway(t, func(s *RouterServices) {
		s.RateLimit = RateLimitConfig{Enabled: true, PerMinute: 1, Burst: 2, IPBurst: 4, MaxClients: 100}
	})
	g.backend.AddUser("alice", "wonderland1")
	g.client.Jar = nil

	// Every request arrives without a scope cookie, so each gets a new scope.
	// A scripted client can still echo a CSRF cookie of its own choosing.
	bad := url.Values{"username": {"alice"}, "password": {"nope-nope"}, CSRFField: {"forged"}}
	limited := 0
	for range 20 {
		p := g.postRaw("/login", bad, "Cookie", testCSRFCookie+"=forged")
		if p.Status == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 16, limited)
	assert.Equal(t, 4, g.backend.Hits("POST /api/v1/auth/login/"))
}

func TestAuthStatusReportsBackend(t *testing.T) {
	g := newGateway(t)
	g.signIn()

	st := authStatus(t, g)
	assert.True(t, st.Backend.Reachable)
	assert.Equal(t, "API is running", st.Backend.Status)
	assert.Equal(t, "Token "+g.storedToken(), g.backend.LastAuthorization("GET /api/v1/auth/status/"))

	g.backend.Override("GET /api/v1/auth/status/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	st = authStatus(t, g)
	assert.False(t, st.Backend.Reachable)
	assert.Empty(t, st.Backend.Status)
	assert.True(t, st.Authenticated, "a failing probe does not end the session")
}
