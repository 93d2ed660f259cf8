package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mhsn/forumweb/internal/apiclient"
	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/domain/forum"
)

// BackendAPI is the part of the backend surface views read through directly.
// Session transitions go through the request's SessionStore instead.
type BackendAPI interface {
	Profile(ctx context.Context) (domainauth.User, error)
	Status(ctx context.Context) (forum.APIStatus, error)
	Categories(ctx context.Context) ([]forum.Category, error)
	CategoryPosts(ctx context.Context, slug string, opts forum.ListOptions) (forum.CategoryPage, error)
	CreatePost(ctx context.Context, in forum.NewPost) (forum.Post, error)
	PostDetail(ctx context.Context, id string) (forum.PostDetail, error)
	Reply(ctx context.Context, postID string, in forum.NewReply) (forum.Reply, error)
	LikePost(ctx context.Context, id string) (forum.LikeResult, error)
	LikeReply(ctx context.Context, id string) (forum.LikeResult, error)
	Search(ctx context.Context, query string, opts forum.ListOptions) (forum.SearchPage, error)
}

// PageData is what every page template receives.
type PageData struct {
	Title     string
	User      *domainauth.User
	Routes    domainauth.Routes
	CSRFToken string
	Flash     string
	Notice    string
	Errors    map[string]string
	Form      map[string]string
	Query     string
	Data      any
}

// Handlers serves the gateway's pages.
type Handlers struct {
	API    BackendAPI
	T      *TemplateRenderer
	Routes domainauth.Routes
	Logger *slog.Logger
}

func (h *Handlers) page(r *http.Request, title string) PageData {
	return PageData{
		Title:     title,
		User:      SnapshotFromContext(r.Context()).User,
		Routes:    h.Routes,
		CSRFToken: CSRFToken(r),
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	if err := h.T.Render(w, status, name, data); err != nil {
		h.Logger.ErrorContext(r.Context(), "render failed", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, title string) {
	h.render(w, r, status, "error", h.page(r, title))
}

// backendError turns a failed backend read into a response. A 401 has
// already cleared the stored token and dropped the live session, so the
// visitor only needs to be sent to the login page.
func (h *Handlers) backendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		Redirect(w, r, h.Routes.Login)
	case apiclient.StatusOf(err) == http.StatusNotFound:
		h.renderError(w, r, http.StatusNotFound, "Not found")
	case errors.Is(err, context.Canceled):
		// Client went away.
	default:
		h.Logger.ErrorContext(r.Context(), "backend call failed", "path", r.URL.Path, "error", err)
		h.renderError(w, r, http.StatusBadGateway, "The forum is unavailable right now. Please try again.")
	}
}

// sessionLost reports whether the request's session was invalidated while
// handling it (a 401 during a session operation) and redirects if so.
func (h *Handlers) sessionLost(w http.ResponseWriter, r *http.Request) bool {
	if SnapshotFromContext(r.Context()).Authenticated() {
		return false
	}
	Redirect(w, r, h.Routes.Login)
	return true
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Not found")
}

// failurePage copies a session failure into page data.
func failurePage(data *PageData, f *domainauth.Failure, fallback string) {
	if f == nil {
		data.Flash = fallback
		return
	}
	data.Flash = f.Message
	if data.Errors == nil {
		data.Errors = make(map[string]string, len(f.Fields))
	}
	for field := range f.Fields {
		data.Errors[field] = f.FieldError(field)
	}
	if data.Flash == "" && len(data.Errors) == 0 {
		data.Flash = fallback
	}
}

// localRedirect keeps a client-supplied return path on this site.
func localRedirect(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

func formValues(r *http.Request, fields ...string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f] = r.PostFormValue(f)
	}
	return out
}
