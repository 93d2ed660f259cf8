package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters and internal/apiclient; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
)

// TokenStorage is durable client storage for the credential token.
// A scope identifies one client (a browser, or the CLI user); within a scope
// the token lives under a single fixed key as a raw string.
type TokenStorage interface {
	// Load returns the stored token, or "" when none is stored.
	Load(ctx context.Context, scope string) (string, error)
	Save(ctx context.Context, scope, token string) error
	Remove(ctx context.Context, scope string) error
}

// AuthPayload is the backend's answer to login and registration.
type AuthPayload struct {
	User  domainauth.User `json:"user"`
	Token string          `json:"token"`
}

// AuthAPI is the slice of the backend REST surface the session layer depends on.
// Calls are authorized by the token stored for the scope carried in ctx.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (AuthPayload, error)
	Register(ctx context.Context, in domainauth.RegisterInput) (AuthPayload, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (domainauth.User, error)
	UpdateProfile(ctx context.Context, in domainauth.ProfileUpdate) (domainauth.User, error)
	DeleteAccount(ctx context.Context) error
}

// ErrBackendUnreachable is wrapped by AuthAPI errors where no HTTP response
// arrived (network, DNS, timeout). Only these are worth retrying.
var ErrBackendUnreachable = errors.New("backend unreachable")

// RemoteError is implemented by errors that carry a backend HTTP response.
type RemoteError interface {
	error
	StatusCode() int
	Body() []byte
}
