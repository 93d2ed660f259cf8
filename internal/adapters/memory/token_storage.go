// Package memory keeps credential tokens in process memory. It backs the
// single-instance SESSION_STORAGE=memory mode; tokens do not survive restarts.
package memory

import (
	"context"
	"errors"
	"sync"
)

// TokenStorage maps a client scope to its raw token.
type TokenStorage struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewTokenStorage creates an empty storage.
func NewTokenStorage() *TokenStorage {
	return &TokenStorage{tokens: make(map[string]string)}
}

// Load returns "" when nothing is stored for scope.
func (s *TokenStorage) Load(_ context.Context, scope string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[scope], nil
}

func (s *TokenStorage) Save(_ context.Context, scope, token string) error {
	if scope == "" {
		return errors.New("scope cannot be empty")
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[scope] = token
	return nil
}

func (s *TokenStorage) Remove(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, scope)
	return nil
}

// Len reports how many scopes hold a token.
func (s *TokenStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
