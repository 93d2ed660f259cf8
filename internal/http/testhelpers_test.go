package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhsn/forumweb/internal/adapters/memory"
	"github.com/mhsn/forumweb/internal/apiclient"
	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/observability/statsd"
	"github.com/mhsn/forumweb/internal/service"
	"github.com/mhsn/forumweb/internal/testutil"
)

const (
	testCookie     = "forum_scope"
	testCSRFCookie = "forum_csrf"
)

// gateway is the full BFF stack in front of a fake backend, driven by a
// browser-like client that keeps cookies and does not follow redirects.
type gateway struct {
	t        *testing.T
	backend  *testutil.FakeBackend
	storage  *memory.TokenStorage
	registry *service.SessionRegistry
	metrics  *statsd.Recorder
	server   *httptest.Server
	client   *http.Client
}

func newGateway(t *testing.T, mutate ...func(*RouterServices)) *gateway {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := &gateway{
		t:       t,
		backend: testutil.NewFakeBackend(t),
		storage: memory.NewTokenStorage(),
		metrics: &statsd.Recorder{},
	}

	var registry *service.SessionRegistry
	api, err := apiclient.New(apiclient.Options{
		BaseURL: g.backend.BaseURL(),
		Storage: g.storage,
		OnUnauthorized: func(ctx context.Context, scope string) {
			registry.Invalidate(ctx, scope)
		},
		Metrics: g.metrics,
		Logger:  logger,
	})
	require.NoError(t, err)
	registry = service.NewSessionRegistry(service.SessionRegistryOptions{
		API:     api,
		Storage: g.storage,
		Logger:  logger,
		Metrics: g.metrics,
	})
	g.registry = registry

	services := RouterServices{
		Sessions:    registry,
		Forums:      api,
		Routes:      domainauth.DefaultRoutes(),
		ScopeCookie: ScopeCookieConfig{Name: testCookie},
		Metrics:     g.metrics,
		Logger:      logger,
	}
	for _, m := range mutate {
		m(&services)
	}
	router, err := NewRouter(services)
	require.NoError(t, err)

	g.server = httptest.NewServer(router)
	t.Cleanup(g.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	g.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return g
}

type page struct {
	Status   int
	Header   http.Header
	Body     string
	Location string
}

func (g *gateway) do(req *http.Request) page {
	g.t.Helper()
	resp, err := g.client.Do(req)
	require.NoError(g.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(g.t, err)
	return page{
		Status:   resp.StatusCode,
		Header:   resp.Header,
		Body:     string(body),
		Location: resp.Header.Get("Location"),
	}
}

func (g *gateway) get(path string, headers ...string) page {
	g.t.Helper()
	req, err := http.NewRequest(http.MethodGet, g.server.URL+path, nil)
	require.NoError(g.t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return g.do(req)
}

// post submits form the way a page served by the gateway would, with the
// browser's CSRF token in the hidden field.
func (g *gateway) post(path string, form url.Values, headers ...string) page {
	g.t.Helper()
	if form.Get(CSRFField) == "" {
		form = cloneValues(form)
		form.Set(CSRFField, g.csrfToken())
	}
	return g.postRaw(path, form, headers...)
}

// postRaw submits form as-is, like a page on another site would.
func (g *gateway) postRaw(path string, form url.Values, headers ...string) page {
	g.t.Helper()
	req, err := http.NewRequest(http.MethodPost, g.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(g.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return g.do(req)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func (g *gateway) cookie(name string) string {
	g.t.Helper()
	u, err := url.Parse(g.server.URL)
	require.NoError(g.t, err)
	for _, c := range g.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// scope returns the browser's scope cookie value.
func (g *gateway) scope() string { return g.cookie(testCookie) }

// csrfToken returns the browser's CSRF cookie, planting one the way a prior
// page load would have when the jar has none yet.
func (g *gateway) csrfToken() string {
	g.t.Helper()
	if tok := g.cookie(testCSRFCookie); tok != "" {
		return tok
	}
	u, err := url.Parse(g.server.URL)
	require.NoError(g.t, err)
	g.client.Jar.SetCookies(u, []*http.Cookie{{Name: testCSRFCookie, Value: "test-csrf-token", Path: "/"}})
	return "test-csrf-token"
}

func (g *gateway) storedToken() string {
	g.t.Helper()
	tok, err := g.storage.Load(context.Background(), g.scope())
	require.NoError(g.t, err)
	return tok
}

// signIn registers alice with the backend and logs in through the gateway.
func (g *gateway) signIn() {
	g.t.Helper()
	g.backend.AddUser("alice", "wonderland1")
	p := g.post("/login", url.Values{"username": {"alice"}, "password": {"wonderland1"}})
	require.Equal(g.t, http.StatusSeeOther, p.Status, p.Body)
	require.Equal(g.t, "/forums", p.Location)
}
