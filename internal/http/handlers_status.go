package httpx

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
)

type statusUser struct {
	UserID          string   `json:"user_id"`
	Username        string   `json:"username"`
	DisplayName     string   `json:"display_name,omitempty"`
	PreferredTopics []string `json:"preferred_topics"`
}

type statusBackend struct {
	Reachable bool   `json:"reachable"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
}

type statusResponse struct {
	State         domainauth.State `json:"state"`
	Authenticated bool             `json:"authenticated"`
	Loading       bool             `json:"loading"`
	User          *statusUser      `json:"user,omitempty"`
	Backend       statusBackend    `json:"backend"`
}

// authStatus reports the visitor's session and whether the forum backend
// answers its status probe, as JSON. The token never leaves the server.
func (h *Handlers) authStatus(w http.ResponseWriter, r *http.Request) {
	probe, err := h.API.Status(r.Context())
	if err != nil && !errors.Is(err, context.Canceled) {
		h.Logger.WarnContext(r.Context(), "backend status probe failed", "error", err)
	}
	// Read after the probe: a 401 on it ends the session.
	snap := SnapshotFromContext(r.Context())
	resp := statusResponse{
		State:         snap.State,
		Authenticated: snap.Authenticated(),
		Loading:       snap.Loading,
		Backend: statusBackend{
			Reachable: err == nil,
			Status:    probe.Status,
			Message:   probe.Message,
		},
	}
	if u := snap.User; u != nil {
		resp.User = &statusUser{
			UserID:          u.UserID,
			Username:        u.Username,
			PreferredTopics: u.PreferredTopics,
		}
		if u.DisplayName != nil {
			resp.User.DisplayName = *u.DisplayName
		}
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, resp)
}
