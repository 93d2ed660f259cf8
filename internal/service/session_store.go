package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/observability/metrics"
	"github.com/mhsn/forumweb/internal/observability/statsd"
	"github.com/mhsn/forumweb/internal/ports"
)

// Generic failure messages shown when the backend gives nothing better.
const (
	msgLoginFailed      = "Login failed"
	msgRegisterFailed   = "Registration failed"
	msgProfileFailed    = "Profile update failed"
	msgDeleteFailed     = "Account deletion failed"
	msgNotAuthenticated = "You must be logged in"
)

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	Scope   string
	API     ports.AuthAPI
	Storage ports.TokenStorage
	Logger  *slog.Logger
	Metrics statsd.Sink

	// BootstrapRetries is how many extra profile fetches a bootstrap makes
	// when the backend cannot be reached. HTTP error answers are never retried.
	BootstrapRetries    int
	BootstrapRetryDelay time.Duration
}

// SessionStore owns one client's authentication state: the current user and
// credential token. It is the only writer of the scope's durable token apart
// from the API client's 401 cleanup.
//
// Remote calls run without holding the lock. Overlapping logins resolve
// last-writer-wins.
type SessionStore struct {
	scope   string
	api     ports.AuthAPI
	storage ports.TokenStorage
	logger  *slog.Logger
	metrics statsd.Sink
	retries int
	delay   time.Duration

	mu      sync.RWMutex
	state   domainauth.State
	user    *domainauth.User
	token   string
	loading bool
}

// NewSessionStore reads durable storage once. A stored token starts the store
// in the bootstrapping state; call Bootstrap to verify it.
func NewSessionStore(ctx context.Context, opts SessionStoreOptions) (*SessionStore, error) {
	if opts.API == nil || opts.Storage == nil {
		return nil, errors.New("session store requires an API and a token storage")
	}
	tok, err := opts.Storage.Load(ctx, opts.Scope)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return newSessionStore(opts, tok), nil
}

func newSessionStore(opts SessionStoreOptions, token string) *SessionStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Nop{}
	}
	s := &SessionStore{
		scope:   opts.Scope,
		api:     opts.API,
		storage: opts.Storage,
		logger:  logger.With("component", "session", "scope", opts.Scope),
		metrics: sink,
		retries: max(opts.BootstrapRetries, 0),
		delay:   opts.BootstrapRetryDelay,
		state:   domainauth.StateUnauthenticated,
	}
	if token != "" {
		s.token = token
		s.state = domainauth.StateBootstrapping
		s.loading = true
	}
	return s
}

// Scope returns the client scope this store serves.
func (s *SessionStore) Scope() string { return s.scope }

// Snapshot returns a consistent copy of the current state.
func (s *SessionStore) Snapshot() domainauth.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domainauth.Snapshot{State: s.state, Token: s.token, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		u.PreferredTopics = append([]string(nil), s.user.PreferredTopics...)
		snap.User = &u
	}
	return snap
}

func (s *SessionStore) scoped(ctx context.Context) context.Context {
	return ports.WithScope(ctx, s.scope)
}

// Bootstrap verifies a stored token by fetching the profile. It is a no-op
// unless the store is bootstrapping. On failure the session is cleaned up as
// if the member had logged out, including a best-effort remote logout when the
// backend answered with something other than 401.
func (s *SessionStore) Bootstrap(ctx context.Context) {
	s.mu.RLock()
	state, tok := s.state, s.token
	s.mu.RUnlock()
	if state != domainauth.StateBootstrapping {
		return
	}

	start := time.Now()
	defer s.finishLoading()

	user, err := s.fetchProfileWithRetry(s.scoped(ctx))
	if err == nil {
		s.mu.Lock()
		if s.state == domainauth.StateBootstrapping && s.token == tok {
			s.user = &user
			s.state = domainauth.StateAuthenticated
		}
		s.mu.Unlock()
		metrics.EmitSessionTransition(s.metrics, metrics.SessionMetric{
			Transition: metrics.TransitionBootstrap, Result: metrics.ResultSuccess, Duration: time.Since(start),
		})
		return
	}

	s.logger.WarnContext(ctx, "stored token rejected; clearing session", "error", err)
	metrics.EmitSessionTransition(s.metrics, metrics.SessionMetric{
		Transition: metrics.TransitionBootstrap, Result: metrics.ResultError, Duration: time.Since(start), Err: err,
	})

	s.mu.Lock()
	owned := s.token == tok
	if owned {
		s.clearLocked()
	}
	s.mu.Unlock()
	if !owned {
		return
	}
	if revocable(err) {
		if lerr := s.api.Logout(s.scoped(ctx)); lerr != nil {
			s.logger.WarnContext(ctx, "remote logout after failed bootstrap failed", "error", lerr)
		}
	}
	s.removeStoredToken(ctx)
}

func (s *SessionStore) fetchProfileWithRetry(ctx context.Context) (domainauth.User, error) {
	for attempt := 0; ; attempt++ {
		user, err := s.api.Profile(ctx)
		if err == nil {
			return user, nil
		}
		if !retryable(err) || attempt >= s.retries || ctx.Err() != nil {
			return domainauth.User{}, err
		}
		s.logger.InfoContext(ctx, "profile fetch failed; retrying", "attempt", attempt+1, "error", err)
		if s.delay > 0 {
			t := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return domainauth.User{}, errors.Join(err, ctx.Err())
			case <-t.C:
			}
		}
	}
}

// retryable reports whether err means the backend never answered. A reply
// that could not be decoded did arrive and is not retried.
func retryable(err error) bool {
	return errors.Is(err, ports.ErrBackendUnreachable)
}

// revocable reports whether a failed bootstrap should still tell the backend
// to drop the token. A 401 means it is already dead, and an unreachable
// backend would only time out again.
func revocable(err error) bool {
	var remote ports.RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode() != http.StatusUnauthorized
	}
	return !errors.Is(err, ports.ErrBackendUnreachable)
}

func (s *SessionStore) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// Login exchanges credentials for a session. On failure state is unchanged.
func (s *SessionStore) Login(ctx context.Context, username, password string) domainauth.Result {
	payload, err := s.api.Login(s.scoped(ctx), username, password)
	if err != nil {
		return s.fail(ctx, metrics.TransitionLogin, err, msgLoginFailed)
	}
	return s.establish(ctx, metrics.TransitionLogin, payload, msgLoginFailed)
}

// Register creates an account and signs in with it. The password
// confirmation is forwarded to the backend, which checks it.
func (s *SessionStore) Register(ctx context.Context, in domainauth.RegisterInput) domainauth.Result {
	payload, err := s.api.Register(s.scoped(ctx), in)
	if err != nil {
		return s.fail(ctx, metrics.TransitionRegister, err, msgRegisterFailed)
	}
	return s.establish(ctx, metrics.TransitionRegister, payload, msgRegisterFailed)
}

func (s *SessionStore) establish(ctx context.Context, transition string, payload ports.AuthPayload, fallback string) domainauth.Result {
	if payload.Token == "" {
		return s.fail(ctx, transition, errors.New("backend returned no token"), fallback)
	}
	if err := s.storage.Save(ctx, s.scope, payload.Token); err != nil {
		return s.fail(ctx, transition, fmt.Errorf("save token: %w", err), fallback)
	}

	user := payload.User
	s.mu.Lock()
	s.user = &user
	s.token = payload.Token
	s.state = domainauth.StateAuthenticated
	s.loading = false
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session established", "transition", transition, "username", user.Username)
	metrics.EmitSessionTransition(s.metrics, metrics.SessionMetric{Transition: transition, Result: metrics.ResultSuccess})
	return domainauth.Succeeded()
}

// fail turns err into a Result. Backend answers keep their payload; anything
// else is logged and reported with the generic message.
func (s *SessionStore) fail(ctx context.Context, transition string, err error, fallback string) domainauth.Result {
	var remote ports.RemoteError
	if errors.As(err, &remote) {
		metrics.EmitSessionTransition(s.metrics, metrics.SessionMetric{Transition: transition, Result: metrics.ResultFailure, Err: err})
		return domainauth.FailedWithPayload(remote.Body(), fallback)
	}
	s.logger.ErrorContext(ctx, "session operation failed", "transition", transition, "error", err)
	metrics.EmitSessionTransition(s.metrics, metrics.SessionMetric{Transition: transition, Result: metrics.ResultError, Err: err})
	return domainauth.Failed(fallback)
}

// Logout ends the session. The backend is told only when a token is held;
// local state and storage are cleared whatever it answers.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()

	if tok != "" {
		if err := s.api.Logout(s.scoped(ctx)); err != nil {
			s.logger.WarnContext(ctx, "remote logout failed; clearing local session anyway", "error", err)
		}
	}

	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	s.removeStoredToken(ctx)

	metrics.EmitSessionTransition(s.metrics, metrics.SessionMetric{Transition: metrics.TransitionLogout, Result: metrics.ResultSuccess})
}

// UpdateProfile applies a partial profile update for the signed-in member.
func (s *SessionStore) UpdateProfile(ctx context.Context, in domainauth.ProfileUpdate) domainauth.Result {
	s.mu.RLock()
	authed, tok := s.user != nil, s.token
	s.mu.RUnlock()
	if !authed {
		return domainauth.Failed(msgNotAuthenticated)
	}

	user, err := s.api.UpdateProfile(s.scoped(ctx), in)
	if err != nil {
		return s.fail(ctx, metrics.TransitionProfile, err, msgProfileFailed)
	}

	s.mu.Lock()
	if s.token == tok && s.user != nil {
		s.user = &user
	}
	s.mu.Unlock()
	metrics.EmitSessionTransition(s.metrics, metrics.SessionMetric{Transition: metrics.TransitionProfile, Result: metrics.ResultSuccess})
	return domainauth.Succeeded()
}

// DeleteAccount removes the member on the backend and then ends the session locally.
func (s *SessionStore) DeleteAccount(ctx context.Context) domainauth.Result {
	s.mu.RLock()
	authed := s.user != nil
	s.mu.RUnlock()
	if !authed {
		return domainauth.Failed(msgNotAuthenticated)
	}

	if err := s.api.DeleteAccount(s.scoped(ctx)); err != nil {
		return s.fail(ctx, metrics.TransitionDelete, err, msgDeleteFailed)
	}

	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	s.removeStoredToken(ctx)

	metrics.EmitSessionTransition(s.metrics, metrics.SessionMetric{Transition: metrics.TransitionDelete, Result: metrics.ResultSuccess})
	return domainauth.Succeeded()
}

// Invalidate drops user and token without calling the backend. It is the
// local half of a forced logout; storage was already cleared by the caller.
func (s *SessionStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// clearLocked resets to unauthenticated. Caller must hold s.mu.
func (s *SessionStore) clearLocked() {
	s.user = nil
	s.token = ""
	s.state = domainauth.StateUnauthenticated
	s.loading = false
}

func (s *SessionStore) removeStoredToken(ctx context.Context) {
	if err := s.storage.Remove(ctx, s.scope); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove stored token", "error", err)
	}
}
