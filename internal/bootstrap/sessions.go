package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/mhsn/forumweb/config"
	"github.com/mhsn/forumweb/internal/adapters/memory"
	redisadapter "github.com/mhsn/forumweb/internal/adapters/redis"
	"github.com/mhsn/forumweb/internal/apiclient"
	"github.com/mhsn/forumweb/internal/observability/statsd"
	"github.com/mhsn/forumweb/internal/ports"
	"github.com/mhsn/forumweb/internal/service"
)

// SessionDeps contains what the session layer is assembled from.
type SessionDeps struct {
	Config  *config.AppConfig
	Redis   redis.UniversalClient
	Metrics statsd.Sink
	Logger  *slog.Logger
	// Transport overrides the backend RoundTripper (tests).
	Transport http.RoundTripper
}

// Sessions is the wired session layer shared by all HTTP handlers.
type Sessions struct {
	Storage  ports.TokenStorage
	API      *apiclient.Client
	Registry *service.SessionRegistry
}

// NewTokenStorage picks the durable storage adapter for cfg.Storage.
//
//nolint:ireturn // the adapter is chosen at runtime.
func NewTokenStorage(cfg config.SessionConfig, client redis.UniversalClient) (ports.TokenStorage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.NewTokenStorage(), nil
	case config.StorageRedis:
		if client == nil {
			return nil, errors.New("redis token storage requires a redis client")
		}
		return redisadapter.NewTokenStorage(client, redisadapter.TokenStorageOptions{
			Prefix:   cfg.KeyPrefix,
			TokenKey: cfg.TokenKey,
			TTL:      cfg.TokenTTL,
		}), nil
	default:
		return nil, fmt.Errorf("unknown session storage %q", cfg.Storage)
	}
}

// NewSessions wires token storage, the backend client and the live-session
// registry. A 401 seen by the client drops the scope's live session.
func NewSessions(deps SessionDeps) (*Sessions, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = statsd.Nop{}
	}
	cfg := deps.Config

	storage, err := NewTokenStorage(cfg.Session, deps.Redis)
	if err != nil {
		return nil, err
	}

	var registry *service.SessionRegistry
	api, err := apiclient.New(apiclient.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Storage: storage,
		OnUnauthorized: func(ctx context.Context, scope string) {
			registry.Invalidate(ctx, scope)
		},
		Metrics:   metrics,
		Logger:    logger.With("component", "apiclient"),
		Transport: deps.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	registry = service.NewSessionRegistry(service.SessionRegistryOptions{
		API:                 api,
		Storage:             storage,
		Logger:              logger.With("component", "sessions"),
		Metrics:             metrics,
		Capacity:            cfg.Session.LiveCapacity,
		IdleTTL:             cfg.Session.LiveIdleTTL,
		BootstrapRetries:    cfg.Session.BootstrapRetries,
		BootstrapRetryDelay: cfg.Session.BootstrapRetryDelay,
	})

	return &Sessions{Storage: storage, API: api, Registry: registry}, nil
}
