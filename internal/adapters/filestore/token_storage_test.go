package filestore

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mhsn/forumweb/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.TokenStorage = (*TokenStorage)(nil)

func TestTokenStorage_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "")
	ctx := context.Background()

	tok, err := s.Load(ctx, "default")
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save(ctx, "default", "abc123"))

	tok, err = s.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok)

	raw, err := os.ReadFile(filepath.Join(dir, "default", "token"))
	require.NoError(t, err)
	assert.Equal(t, "abc123", string(raw))

	require.NoError(t, s.Remove(ctx, "default"))
	tok, err = s.Load(ctx, "default")
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Remove(ctx, "default"))
}

func TestTokenStorage_Overwrite(t *testing.T) {
	s := New(t.TempDir(), "tok")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "work", "first"))
	require.NoError(t, s.Save(ctx, "work", "second"))

	tok, err := s.Load(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "second", tok)
}

func TestTokenStorage_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	dir := t.TempDir()
	s := New(dir, "")
	require.NoError(t, s.Save(context.Background(), "default", "abc"))

	info, err := os.Stat(filepath.Join(dir, "default", "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTokenStorage_InvalidScope(t *testing.T) {
	s := New(t.TempDir(), "")
	ctx := context.Background()

	for _, scope := range []string{"", "..", "a/b"} {
		_, err := s.Load(ctx, scope)
		assert.Error(t, err, scope)
		assert.Error(t, s.Save(ctx, scope, "x"), scope)
	}
	assert.Error(t, s.Save(ctx, "default", ""))
}
