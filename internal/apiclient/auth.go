package apiclient

import (
	"context"
	"net/http"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/domain/forum"
	"github.com/mhsn/forumweb/internal/ports"
)

type userEnvelope struct {
	User domainauth.User `json:"user"`
}

// Login exchanges credentials for a user and token.
func (c *Client) Login(ctx context.Context, username, password string) (ports.AuthPayload, error) {
	var out ports.AuthPayload
	in := map[string]string{"username": username, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/login/", nil, in, &out)
	return out, err
}

// Register creates an account; the backend answers like Login.
func (c *Client) Register(ctx context.Context, in domainauth.RegisterInput) (ports.AuthPayload, error) {
	var out ports.AuthPayload
	err := c.do(ctx, http.MethodPost, "/auth/register/", nil, in, &out)
	return out, err
}

// Logout revokes the caller's token on the backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil, nil)
}

// Profile fetches the authenticated member.
func (c *Client) Profile(ctx context.Context) (domainauth.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodGet, "/auth/profile/", nil, nil, &out)
	return out.User, err
}

// UpdateProfile sends only the fields set in in.
func (c *Client) UpdateProfile(ctx context.Context, in domainauth.ProfileUpdate) (domainauth.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPut, "/auth/profile/update/", nil, in, &out)
	return out.User, err
}

// DeleteAccount removes the member and their token.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/auth/profile/delete/", nil, nil, nil)
}

// Status probes the backend and reports whether the call was authenticated.
func (c *Client) Status(ctx context.Context) (forum.APIStatus, error) {
	var out forum.APIStatus
	err := c.do(ctx, http.MethodGet, "/auth/status/", nil, nil, &out)
	return out, err
}
