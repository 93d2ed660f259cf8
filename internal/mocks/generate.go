// Package mocks provides generated mock implementations for testing the forum gateway.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the session ports.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	storage := mocks.NewMockTokenStorage(ctrl)
//	storage.EXPECT().Load(gomock.Any(), "scope").Return("abc", nil)
package mocks

// Generate mock for TokenStorage interface from internal/ports package.
// This creates MockTokenStorage with methods: Load, Save, Remove
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_storage_mock.go github.com/mhsn/forumweb/internal/ports TokenStorage

// Generate mock for AuthAPI interface from internal/ports package.
// This creates MockAuthAPI with methods: Login, Register, Logout, Profile, UpdateProfile, DeleteAccount
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_api_mock.go github.com/mhsn/forumweb/internal/ports AuthAPI
