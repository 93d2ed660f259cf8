package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mhsn/forumweb/config"
	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	httpx "github.com/mhsn/forumweb/internal/http"
	"github.com/mhsn/forumweb/internal/observability/statsd"
)

// HTTPHandlerConfig contains what the gateway's handler is built from.
type HTTPHandlerConfig struct {
	Config   *config.AppConfig
	Sessions *Sessions
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// NewHTTPHandler builds the router and wraps it with the shared middleware.
// Order: Recover -> Logging -> Router.
func NewHTTPHandler(cfg HTTPHandlerConfig) (http.Handler, error) {
	if cfg.Config == nil || cfg.Sessions == nil {
		return nil, errors.New("config and sessions are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := cfg.Config

	router, err := httpx.NewRouter(httpx.RouterServices{
		Sessions: cfg.Sessions.Registry,
		Forums:   cfg.Sessions.API,
		Routes: domainauth.Routes{
			Login:   app.Routes.LoginPath,
			Landing: app.Routes.LandingPath,
		},
		ScopeCookie: httpx.ScopeCookieConfig{
			Name:   app.Session.ScopeCookie,
			TTL:    app.Session.ScopeCookieTTL,
			Domain: app.HTTP.CookieDomain,
			Secure: app.HTTP.CookieSecure,
		},
		RateLimit: httpx.RateLimitConfig{
			Enabled:    app.RateLimit.Enabled,
			PerMinute:  app.RateLimit.PerMinute,
			Burst:      app.RateLimit.Burst,
			MaxClients: app.RateLimit.MaxClients,

			IPPerMinute:    app.RateLimit.IPPerMinute,
			IPBurst:        app.RateLimit.IPBurst,
			ClientIPHeader: app.RateLimit.ClientIPHeader,
		},
		CSRF: httpx.CSRFConfig{
			Domain: app.HTTP.CookieDomain,
			Secure: app.HTTP.CookieSecure,
		},
		Metrics: cfg.Metrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	h := httpx.Logging(logger)(router)
	h = httpx.Recover(logger)(h)
	return h, nil
}

func newServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	addr := cfg.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// serve runs server on ln until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(gctx),
			Server:  server,
			Timeout: shutdownTimeout,
			Logger:  logger,
		})
	})

	return g.Wait()
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(cfg.Context, "shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(cfg.Context, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(cfg.Context, "HTTP server stopped")
	}
	return nil
}
