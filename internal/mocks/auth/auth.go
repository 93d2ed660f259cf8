package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.TokenStorage = (*MemoryTokenStorage)(nil)
	_ ports.AuthAPI      = (*StubAuthAPI)(nil)
	_ ports.RemoteError  = (*RemoteError)(nil)
)

// MemoryTokenStorage is an in-memory token storage with failure injection.
// It is safe for concurrent use.
type MemoryTokenStorage struct {
	mu     sync.Mutex
	tokens map[string]string

	// Optional failure injection.
	LoadErr   error
	SaveErr   error
	RemoveErr error
}

// NewMemoryTokenStorage creates an empty storage.
func NewMemoryTokenStorage() *MemoryTokenStorage {
	return &MemoryTokenStorage{tokens: make(map[string]string)}
}

func (m *MemoryTokenStorage) Load(_ context.Context, scope string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return "", m.LoadErr
	}
	return m.tokens[scope], nil
}

func (m *MemoryTokenStorage) Save(_ context.Context, scope, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}
	m.tokens[scope] = token
	return nil
}

func (m *MemoryTokenStorage) Remove(_ context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.tokens, scope)
	return nil
}

// Peek returns the stored token without going through a context.
func (m *MemoryTokenStorage) Peek(scope string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[scope]
}

// StubAuthAPI lets tests script backend answers per call.
// Unset funcs fail with errNotScripted, except Logout, so forgotten wiring is loud.
type StubAuthAPI struct {
	LoginFunc         func(ctx context.Context, username, password string) (ports.AuthPayload, error)
	RegisterFunc      func(ctx context.Context, in domainauth.RegisterInput) (ports.AuthPayload, error)
	LogoutFunc        func(ctx context.Context) error
	ProfileFunc       func(ctx context.Context) (domainauth.User, error)
	UpdateProfileFunc func(ctx context.Context, in domainauth.ProfileUpdate) (domainauth.User, error)
	DeleteAccountFunc func(ctx context.Context) error

	mu    sync.Mutex
	calls map[string]int
}

var errNotScripted = errors.New("stub: call not scripted")

func (s *StubAuthAPI) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
}

// Calls returns how many times the named method ran.
func (s *StubAuthAPI) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *StubAuthAPI) Login(ctx context.Context, username, password string) (ports.AuthPayload, error) {
	s.record("Login")
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, username, password)
	}
	return ports.AuthPayload{}, errNotScripted
}

func (s *StubAuthAPI) Register(ctx context.Context, in domainauth.RegisterInput) (ports.AuthPayload, error) {
	s.record("Register")
	if s.RegisterFunc != nil {
		return s.RegisterFunc(ctx, in)
	}
	return ports.AuthPayload{}, errNotScripted
}

func (s *StubAuthAPI) Logout(ctx context.Context) error {
	s.record("Logout")
	if s.LogoutFunc != nil {
		return s.LogoutFunc(ctx)
	}
	return nil
}

func (s *StubAuthAPI) Profile(ctx context.Context) (domainauth.User, error) {
	s.record("Profile")
	if s.ProfileFunc != nil {
		return s.ProfileFunc(ctx)
	}
	return domainauth.User{}, errNotScripted
}

func (s *StubAuthAPI) UpdateProfile(ctx context.Context, in domainauth.ProfileUpdate) (domainauth.User, error) {
	s.record("UpdateProfile")
	if s.UpdateProfileFunc != nil {
		return s.UpdateProfileFunc(ctx, in)
	}
	return domainauth.User{}, errNotScripted
}

func (s *StubAuthAPI) DeleteAccount(ctx context.Context) error {
	s.record("DeleteAccount")
	if s.DeleteAccountFunc != nil {
		return s.DeleteAccountFunc(ctx)
	}
	return errNotScripted
}

// RemoteError is a canned backend error response.
type RemoteError struct {
	Status  int
	Payload []byte
}

func (e *RemoteError) Error() string   { return fmt.Sprintf("backend returned %d", e.Status) }
func (e *RemoteError) StatusCode() int { return e.Status }
func (e *RemoteError) Body() []byte    { return e.Payload }
