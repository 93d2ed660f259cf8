package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mhsn/forumweb/internal/ports"
)

var (
	// ErrUnauthorized matches any *APIError with status 401.
	ErrUnauthorized = errors.New("backend rejected credentials")
	// ErrTransport wraps failures where no HTTP response arrived. It matches
	// ports.ErrBackendUnreachable.
	ErrTransport = fmt.Errorf("apiclient: %w", ports.ErrBackendUnreachable)
)

// APIError is a non-2xx backend response. Payload is the raw body.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Payload []byte
}

var _ ports.RemoteError = (*APIError)(nil)

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *APIError) StatusCode() int { return e.Status }
func (e *APIError) Body() []byte    { return e.Payload }

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// IsTransport reports whether err is a failure with no backend response.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
