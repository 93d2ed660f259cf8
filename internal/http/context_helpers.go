package httpx

import (
	"context"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/service"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the live session.
// If store is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, store *service.SessionStore) context.Context {
	if store == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, store)
}

// SessionFromContext returns the live session placed by the Sessions middleware.
func SessionFromContext(ctx context.Context) (*service.SessionStore, bool) {
	store, ok := ctx.Value(sessionKey{}).(*service.SessionStore)
	return store, ok && store != nil
}

// SnapshotFromContext reads the session's current state. Without a session
// the visitor is treated as signed out.
func SnapshotFromContext(ctx context.Context) domainauth.Snapshot {
	if store, ok := SessionFromContext(ctx); ok {
		return store.Snapshot()
	}
	return domainauth.Snapshot{State: domainauth.StateUnauthenticated}
}
