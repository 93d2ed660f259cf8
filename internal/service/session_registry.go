package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mhsn/forumweb/internal/observability/metrics"
	"github.com/mhsn/forumweb/internal/observability/statsd"
	"github.com/mhsn/forumweb/internal/ports"
	"golang.org/x/sync/singleflight"
)

// SessionRegistryOptions groups dependencies for SessionRegistry.
type SessionRegistryOptions struct {
	API     ports.AuthAPI
	Storage ports.TokenStorage
	Logger  *slog.Logger
	Metrics statsd.Sink

	Capacity            int
	IdleTTL             time.Duration
	BootstrapRetries    int
	BootstrapRetryDelay time.Duration

	// Now is an injectable clock for tests.
	Now func() time.Time
}

// SessionRegistry holds the live SessionStore of every active client scope.
// Durable storage is the source of truth: a live store whose token no longer
// matches storage is rebuilt on the next Open.
type SessionRegistry struct {
	api     ports.AuthAPI
	storage ports.TokenStorage
	logger  *slog.Logger
	metrics statsd.Sink
	retries int
	delay   time.Duration

	live  *liveSessions
	group singleflight.Group
}

// NewSessionRegistry constructs a registry.
func NewSessionRegistry(opts SessionRegistryOptions) *SessionRegistry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Nop{}
	}
	return &SessionRegistry{
		api:     opts.API,
		storage: opts.Storage,
		logger:  logger,
		metrics: sink,
		retries: opts.BootstrapRetries,
		delay:   opts.BootstrapRetryDelay,
		live: newLiveSessions(liveSessionsConfig{
			Capacity: opts.Capacity,
			IdleTTL:  opts.IdleTTL,
			Now:      opts.Now,
		}),
	}
}

// Open returns the live session for scope, bootstrapping one from durable
// storage when needed. It returns only after any bootstrap has settled, so
// callers never observe the bootstrapping state. Concurrent opens of the same
// scope share one bootstrap.
func (r *SessionRegistry) Open(ctx context.Context, scope string) (*SessionStore, error) {
	tok, err := r.storage.Load(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if s, ok := r.current(scope, tok); ok {
		return s, nil
	}

	v, err, _ := r.group.Do(scope, func() (any, error) {
		if s, ok := r.current(scope, tok); ok {
			return s, nil
		}
		s := newSessionStore(SessionStoreOptions{
			Scope:               scope,
			API:                 r.api,
			Storage:             r.storage,
			Logger:              r.logger,
			Metrics:             r.metrics,
			BootstrapRetries:    r.retries,
			BootstrapRetryDelay: r.delay,
		}, tok)
		// The bootstrap outlives a single request that gave up waiting.
		s.Bootstrap(context.WithoutCancel(ctx))
		evicted := r.live.put(scope, s)
		metrics.EmitLiveSessions(r.metrics, r.live.len(), evicted)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SessionStore), nil
}

func (r *SessionRegistry) current(scope, token string) (*SessionStore, bool) {
	s, ok := r.live.get(scope)
	if !ok {
		return nil, false
	}
	if s.Snapshot().Token != token {
		return nil, false
	}
	return s, true
}

// Invalidate ends the live session for scope after the backend rejected its
// token. It matches apiclient.UnauthorizedFunc.
func (r *SessionRegistry) Invalidate(ctx context.Context, scope string) {
	if s, ok := r.live.take(scope); ok {
		s.Invalidate()
	}
	r.logger.InfoContext(ctx, "session invalidated by backend", "scope", scope)
	metrics.EmitSessionTransition(r.metrics, metrics.SessionMetric{
		Transition: metrics.TransitionForcedLogout, Result: metrics.ResultSuccess,
	})
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int { return r.live.len() }
