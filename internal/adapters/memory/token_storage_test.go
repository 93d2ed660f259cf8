package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhsn/forumweb/internal/ports"
)

var _ ports.TokenStorage = (*TokenStorage)(nil)

func TestTokenStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStorage()

	tok, err := s.Load(ctx, "tab-1")
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save(ctx, "tab-1", "abc"))
	require.NoError(t, s.Save(ctx, "tab-2", "def"))
	assert.Equal(t, 2, s.Len())

	tok, err = s.Load(ctx, "tab-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Remove(ctx, "tab-1"))
	require.NoError(t, s.Remove(ctx, "tab-1"))
	tok, _ = s.Load(ctx, "tab-1")
	assert.Empty(t, tok)
	assert.Equal(t, 1, s.Len())
}

func TestTokenStorageRejectsEmpty(t *testing.T) {
	s := NewTokenStorage()
	assert.Error(t, s.Save(context.Background(), "", "abc"))
	assert.Error(t, s.Save(context.Background(), "tab-1", ""))
}
