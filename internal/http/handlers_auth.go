package httpx

import (
	"net/http"
	"strings"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/http/validation"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgRegistration       = "Registration failed"
)

func (h *Handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", h.page(r, "Log in"))
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	store, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	data := h.page(r, "Log in")
	data.Form = map[string]string{"username": strings.TrimSpace(r.PostFormValue("username"))}
	password := r.PostFormValue("password")

	if fv := validation.Login(data.Form["username"], password); !fv.Valid() {
		data.Errors = fv.Errors()
		h.render(w, r, http.StatusUnprocessableEntity, "login", data)
		return
	}

	res := store.Login(r.Context(), data.Form["username"], password)
	if !res.Success {
		failurePage(&data, res.Failure, msgInvalidCredentials)
		h.render(w, r, http.StatusUnauthorized, "login", data)
		return
	}
	Redirect(w, r, h.Routes.Landing)
}

func (h *Handlers) registerPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", h.page(r, "Join"))
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	store, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	in := domainauth.RegisterInput{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		DisplayName:     strings.TrimSpace(r.PostFormValue("display_name")),
	}
	data := h.page(r, "Join")
	data.Form = map[string]string{"username": in.Username, "display_name": in.DisplayName}

	if fv := validation.Register(in); !fv.Valid() {
		data.Errors = fv.Errors()
		h.render(w, r, http.StatusUnprocessableEntity, "register", data)
		return
	}

	res := store.Register(r.Context(), in)
	if !res.Success {
		failurePage(&data, res.Failure, msgRegistration)
		h.render(w, r, http.StatusBadRequest, "register", data)
		return
	}
	Redirect(w, r, h.Routes.Landing)
}

// logout always ends the local session; the backend call is best effort.
func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if store, ok := SessionFromContext(r.Context()); ok {
		store.Logout(r.Context())
	}
	Redirect(w, r, "/")
}
