package auth

// Package auth contains domain-level types for the client session lifecycle.
// It is pure and free of framework/adapter concerns.

import "time"

// State is the lifecycle state of a client session.
type State string

const (
	// StateBootstrapping means a token was found in durable storage and the
	// profile fetch that verifies it has not settled yet.
	StateBootstrapping State = "bootstrapping"
	// StateUnauthenticated means no token and no user are held.
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticated means both a token and a user are held.
	StateAuthenticated State = "authenticated"
)

// User is the profile of the authenticated member as returned by the backend.
type User struct {
	UserID          string    `json:"user_id"`
	Username        string    `json:"username"`
	DisplayName     *string   `json:"display_name"`
	Bio             *string   `json:"bio"`
	PreferredTopics []string  `json:"preferred_topics"`
	IsAnonymous     bool      `json:"is_anonymous"`
	CreatedAt       time.Time `json:"created_at"`
}

// Name returns the display name when set, else the username.
func (u User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Username
}

// Snapshot is a consistent read view of a session at one instant.
// Guards and views only ever see snapshots, never the live store.
type Snapshot struct {
	State   State
	User    *User
	Token   string
	Loading bool
}

// Authenticated reports whether a user is present.
func (s Snapshot) Authenticated() bool { return s.User != nil }

// RegisterInput carries the registration form as submitted.
// ConfirmPassword is forwarded to the backend unchecked.
type RegisterInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DisplayName     string `json:"display_name"`
}

// ProfileUpdate carries a partial profile update; nil fields are left unchanged.
type ProfileUpdate struct {
	DisplayName     *string   `json:"display_name,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	PreferredTopics *[]string `json:"preferred_topics,omitempty"`
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.PreferredTopics == nil
}
