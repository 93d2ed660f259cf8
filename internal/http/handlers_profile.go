package httpx

import (
	"net/http"
	"strings"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/http/validation"
)

const (
	msgProfileUpdated = "Profile updated successfully"
	msgProfileFailed  = "Profile update failed"
	msgDeleteFailed   = "Account deletion failed"
)

// profilePage re-reads the profile from the backend so a token revoked
// elsewhere is noticed here rather than on the next write.
func (h *Handlers) profilePage(w http.ResponseWriter, r *http.Request) {
	user, err := h.API.Profile(r.Context())
	if err != nil {
		h.backendError(w, r, err)
		return
	}
	data := h.page(r, "Profile")
	data.Data = user
	data.Form = profileForm(user)
	h.render(w, r, http.StatusOK, "profile", data)
}

func profileForm(u domainauth.User) map[string]string {
	form := map[string]string{
		"preferred_topics": strings.Join(u.PreferredTopics, ", "),
	}
	if u.DisplayName != nil {
		form["display_name"] = *u.DisplayName
	}
	if u.Bio != nil {
		form["bio"] = *u.Bio
	}
	return form
}

func (h *Handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	store, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	data := h.page(r, "Profile")
	data.Form = formValues(r, "display_name", "bio", "preferred_topics")
	if data.User != nil {
		data.Data = *data.User
	}

	if fv := validation.Profile(data.Form["display_name"], data.Form["bio"], data.Form["preferred_topics"]); !fv.Valid() {
		data.Errors = fv.Errors()
		h.render(w, r, http.StatusUnprocessableEntity, "profile", data)
		return
	}

	displayName := strings.TrimSpace(data.Form["display_name"])
	bio := strings.TrimSpace(data.Form["bio"])
	topics := validation.SplitList(data.Form["preferred_topics"])
	res := store.UpdateProfile(r.Context(), domainauth.ProfileUpdate{
		DisplayName:     &displayName,
		Bio:             &bio,
		PreferredTopics: &topics,
	})
	if h.sessionLost(w, r) {
		return
	}
	if !res.Success {
		failurePage(&data, res.Failure, msgProfileFailed)
		h.render(w, r, http.StatusBadRequest, "profile", data)
		return
	}

	data.User = store.Snapshot().User
	if data.User != nil {
		data.Data = *data.User
		data.Form = profileForm(*data.User)
	}
	data.Notice = msgProfileUpdated
	h.render(w, r, http.StatusOK, "profile", data)
}

func (h *Handlers) deleteAccount(w http.ResponseWriter, r *http.Request) {
	store, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	res := store.DeleteAccount(r.Context())
	if res.Success {
		Redirect(w, r, "/")
		return
	}
	if h.sessionLost(w, r) {
		return
	}
	data := h.page(r, "Profile")
	if data.User != nil {
		data.Data = *data.User
		data.Form = profileForm(*data.User)
	}
	failurePage(&data, res.Failure, msgDeleteFailed)
	h.render(w, r, http.StatusBadGateway, "profile", data)
}
