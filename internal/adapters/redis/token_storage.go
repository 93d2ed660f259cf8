package redis

// Package redis provides Redis-based adapters for the forum gateway.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix   = "forumweb:scope:"
	defaultTokenKey = "token"
)

// TokenStorage keeps one credential token per client scope in Redis.
// The value is the raw token string; keys are "<prefix><scope>:<tokenKey>".
type TokenStorage struct {
	client   redis.UniversalClient
	prefix   string
	tokenKey string
	ttl      time.Duration
}

// TokenStorageOptions configures a TokenStorage. Zero values pick defaults;
// a zero TTL stores tokens without expiry.
type TokenStorageOptions struct {
	Prefix   string
	TokenKey string
	TTL      time.Duration
}

// NewTokenStorage creates a Redis-based token storage.
func NewTokenStorage(client redis.UniversalClient, opts TokenStorageOptions) *TokenStorage {
	s := &TokenStorage{
		client:   client,
		prefix:   opts.Prefix,
		tokenKey: opts.TokenKey,
		ttl:      opts.TTL,
	}
	if s.prefix == "" {
		s.prefix = defaultPrefix
	}
	if s.tokenKey == "" {
		s.tokenKey = defaultTokenKey
	}
	return s
}

func (s *TokenStorage) key(scope string) string {
	return s.prefix + scope + ":" + s.tokenKey
}

// Load returns the stored token or "" when the scope has none.
func (s *TokenStorage) Load(ctx context.Context, scope string) (string, error) {
	if scope == "" {
		return "", nil
	}

	tok, err := s.client.Get(ctx, s.key(scope)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return tok, nil
}

// Save stores the token for scope, replacing any previous one.
func (s *TokenStorage) Save(ctx context.Context, scope, token string) error {
	if scope == "" {
		return errors.New("scope cannot be empty")
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}

	if err := s.client.Set(ctx, s.key(scope), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Remove deletes the token for scope. Removing an absent token is not an error.
func (s *TokenStorage) Remove(ctx context.Context, scope string) error {
	if scope == "" {
		return nil // Nothing to delete
	}

	if err := s.client.Del(ctx, s.key(scope)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
