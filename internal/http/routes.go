package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/observability/statsd"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Sessions    SessionOpener
	Forums      BackendAPI
	Routes      domainauth.Routes
	ScopeCookie ScopeCookieConfig
	CSRF        CSRFConfig
	RateLimit   RateLimitConfig
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// NewRouter builds the gateway's handler. Every route except /healthz runs
// behind ClientScope, CSRFProtection and Sessions, so guards and views always
// see a settled session and a cross-site POST never reaches one.
func NewRouter(s RouterServices) (http.Handler, error) {
	if s.Sessions == nil || s.Forums == nil {
		return nil, errors.New("sessions and forums are required")
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	routes := s.Routes
	if routes.Login == "" || routes.Landing == "" {
		routes = domainauth.DefaultRoutes()
	}
	metrics := s.Metrics
	if metrics == nil {
		metrics = statsd.Nop{}
	}

	tr, err := NewTemplateRenderer(templateFS, logger)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	h := &Handlers{API: s.Forums, T: tr, Routes: routes, Logger: logger}

	app := http.NewServeMux()
	registerPublicRoutes(app, h)
	registerAuthRoutes(app, h, authRouteConfig{
		Routes:    routes,
		RateLimit: countRejected(RateLimitAuth(s.RateLimit), metrics),
	})
	registerMemberRoutes(app, h, RequireAuthentication(routes))
	app.HandleFunc("/", h.notFound)

	csrf := s.CSRF
	if csrf.Domain == "" {
		csrf.Domain = s.ScopeCookie.Domain
	}
	csrf.Secure = csrf.Secure || s.ScopeCookie.Secure

	var scoped http.Handler = app
	scoped = Sessions(s.Sessions, logger)(scoped)
	scoped = CSRFProtection(csrf)(scoped)
	scoped = ClientScope(s.ScopeCookie)(scoped)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", healthHandler)
	root.HandleFunc("HEAD /healthz", healthHandler)
	root.Handle("/", scoped)
	return root, nil
}

func registerPublicRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /forums", h.forums)
	mux.HandleFunc("GET /forums/{slug}", h.category)
	mux.HandleFunc("GET /posts/{id}", h.post)
	mux.HandleFunc("GET /search", h.search)
	mux.HandleFunc("GET /auth/status", h.authStatus)
	mux.HandleFunc("POST /logout", h.logout)
}

type authRouteConfig struct {
	Routes    domainauth.Routes
	RateLimit func(http.Handler) http.Handler
}

func registerAuthRoutes(mux *http.ServeMux, h *Handlers, cfg authRouteConfig) {
	publicOnly := PublicOnlyView(cfg.Routes)
	login := cfg.Routes.Login
	mux.Handle("GET "+login, publicOnly(http.HandlerFunc(h.loginPage)))
	mux.Handle("POST "+login, publicOnly(cfg.RateLimit(http.HandlerFunc(h.login))))
	mux.Handle("GET /register", publicOnly(http.HandlerFunc(h.registerPage)))
	mux.Handle("POST /register", publicOnly(cfg.RateLimit(http.HandlerFunc(h.register))))
}

func registerMemberRoutes(mux *http.ServeMux, h *Handlers, requireAuth func(http.Handler) http.Handler) {
	member := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(fn))
	}
	member("GET /create-post", h.createPostPage)
	member("POST /create-post", h.createPost)
	member("GET /profile", h.profilePage)
	member("POST /profile", h.updateProfile)
	member("POST /profile/delete", h.deleteAccount)
	member("POST /posts/{id}/replies", h.reply)
	member("POST /posts/{id}/like", h.likePost)
	member("POST /replies/{id}/like", h.likeReply)
}

// countRejected counts throttled submissions.
func countRejected(limit func(http.Handler) http.Handler, sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			limited.ServeHTTP(ww, r)
			if ww.status == http.StatusTooManyRequests {
				sink.Count("auth.rate_limited", 1, map[string]string{"path": r.URL.Path})
			}
		})
	}
}
