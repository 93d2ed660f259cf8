package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mhsn/forumweb/internal/observability/metrics"
	"github.com/mhsn/forumweb/internal/observability/statsd"
	"github.com/mhsn/forumweb/internal/ports"
)

// UnauthorizedFunc is told about a 401 after the scope's token was removed.
type UnauthorizedFunc func(ctx context.Context, scope string)

// authTransport attaches the scope's stored token to each request and clears
// it when the backend answers 401. The token is read at call time so a request
// never carries a token that was removed before it was sent.
type authTransport struct {
	next           http.RoundTripper
	storage        ports.TokenStorage
	onUnauthorized UnauthorizedFunc
	logger         *slog.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	scope := ports.ScopeFrom(ctx)

	if scope != "" && t.storage != nil {
		tok, err := t.storage.Load(ctx, scope)
		switch {
		case err != nil:
			t.logger.WarnContext(ctx, "token load failed; sending request unauthenticated", "error", err)
		case tok != "":
			req = req.Clone(ctx)
			req.Header.Set("Authorization", "Token "+tok)
		}
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && scope != "" {
		t.unauthorized(ctx, scope)
	}
	return resp, nil
}

func (t *authTransport) unauthorized(ctx context.Context, scope string) {
	if t.storage != nil {
		if err := t.storage.Remove(ctx, scope); err != nil {
			t.logger.ErrorContext(ctx, "failed to clear token after 401", "error", err)
		}
	}
	t.logger.InfoContext(ctx, "backend rejected token; session ended")
	if t.onUnauthorized != nil {
		t.onUnauthorized(ctx, scope)
	}
}

// observeTransport times each backend call and logs it at debug level.
type observeTransport struct {
	next   http.RoundTripper
	sink   statsd.Sink
	logger *slog.Logger
}

func (t *observeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	metrics.EmitAPIRequest(t.sink, req.Method, status, elapsed, err)

	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	t.logger.DebugContext(req.Context(), "backend request", attrs...)
	return resp, err
}
