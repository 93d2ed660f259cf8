package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mhsn/forumweb/internal/ports"
	"github.com/mhsn/forumweb/internal/service"
)

// SessionOpener resolves the live session for a client scope.
type SessionOpener interface {
	Open(ctx context.Context, scope string) (*service.SessionStore, error)
}

// Sessions resolves the request's live session and places it in the context.
// It must run after ClientScope. Open returns only once bootstrap settled, so
// downstream guards never see a half-verified token.
func Sessions(opener SessionOpener, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := ports.ScopeFrom(r.Context())
			if scope == "" {
				WriteError(w, ErrorParams{
					Code:    http.StatusInternalServerError,
					ErrCode: "missing_scope",
					Err:     errors.New("client scope not resolved"),
				})
				return
			}
			store, err := opener.Open(r.Context(), scope)
			if err != nil {
				logger.ErrorContext(r.Context(), "open session failed", "scope", scope, "error", err)
				http.Error(w, "Session storage unavailable", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), store)))
		})
	}
}
