package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserName(t *testing.T) {
	display := "Quiet Owl"
	empty := ""

	assert.Equal(t, "Quiet Owl", User{Username: "alice", DisplayName: &display}.Name())
	assert.Equal(t, "alice", User{Username: "alice", DisplayName: &empty}.Name())
	assert.Equal(t, "alice", User{Username: "alice"}.Name())
}

func TestProfileUpdateEmpty(t *testing.T) {
	bio := "hi"
	assert.True(t, ProfileUpdate{}.Empty())
	assert.False(t, ProfileUpdate{Bio: &bio}.Empty())
}

func TestRequiresAuthentication(t *testing.T) {
	routes := DefaultRoutes()

	d := RequiresAuthentication(Snapshot{State: StateUnauthenticated}, routes)
	assert.False(t, d.Render)
	assert.Equal(t, "/login", d.RedirectTo)

	d = RequiresAuthentication(Snapshot{State: StateAuthenticated, User: &User{Username: "alice"}, Token: "abc"}, routes)
	assert.True(t, d.Render)
	assert.Empty(t, d.RedirectTo)
}

func TestPublicOnly(t *testing.T) {
	routes := Routes{Login: "/signin", Landing: "/boards"}

	d := PublicOnly(Snapshot{State: StateAuthenticated, User: &User{Username: "alice"}, Token: "abc"}, routes)
	assert.False(t, d.Render)
	assert.Equal(t, "/boards", d.RedirectTo)

	d = PublicOnly(Snapshot{State: StateUnauthenticated}, routes)
	assert.True(t, d.Render)
}

func TestGuardsTreatBootstrappingAsSignedOut(t *testing.T) {
	snap := Snapshot{State: StateBootstrapping, Token: "abc", Loading: true}

	assert.False(t, RequiresAuthentication(snap, DefaultRoutes()).Render)
	assert.True(t, PublicOnly(snap, DefaultRoutes()).Render)
}
