// Package filestore keeps credential tokens on the local filesystem for the CLI.
//
// Each scope gets its own directory under the root and the token lives in a
// file named after the token key, as the raw string with no envelope.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const defaultTokenKey = "token"

// TokenStorage is a file-backed ports.TokenStorage.
type TokenStorage struct {
	root     string
	tokenKey string
}

// New creates a storage rooted at dir. An empty tokenKey means "token".
func New(dir, tokenKey string) *TokenStorage {
	if tokenKey == "" {
		tokenKey = defaultTokenKey
	}
	return &TokenStorage{root: dir, tokenKey: tokenKey}
}

// DefaultDir returns ~/.forumctl.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".forumctl"), nil
}

func (s *TokenStorage) path(scope string) (string, error) {
	if scope == "" || strings.ContainsAny(scope, `/\`) || scope == "." || scope == ".." {
		return "", fmt.Errorf("invalid scope %q", scope)
	}
	return filepath.Join(s.root, scope, s.tokenKey), nil
}

// Load returns the stored token or "" if none is saved.
func (s *TokenStorage) Load(_ context.Context, scope string) (string, error) {
	p, err := s.path(scope)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token with owner-only permissions, replacing it atomically.
func (s *TokenStorage) Save(_ context.Context, scope, token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	p, err := s.path(scope)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+s.tokenKey+"-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod token file: %w", err)
	}
	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

// Remove deletes the token file. A missing file is not an error.
func (s *TokenStorage) Remove(_ context.Context, scope string) error {
	p, err := s.path(scope)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
