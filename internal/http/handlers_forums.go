package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mhsn/forumweb/internal/apiclient"
	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/domain/forum"
	"github.com/mhsn/forumweb/internal/http/validation"
)

const (
	msgCreatePostFailed = "Failed to create post"
	msgReplyFailed      = "Failed to post reply"
)

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", h.page(r, ""))
}

func (h *Handlers) forums(w http.ResponseWriter, r *http.Request) {
	cats, err := h.API.Categories(r.Context())
	if err != nil {
		h.backendError(w, r, err)
		return
	}
	data := h.page(r, "Forums")
	data.Data = cats
	h.render(w, r, http.StatusOK, "forums", data)
}

func listOptions(r *http.Request) forum.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return forum.ListOptions{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
		Page:     max(page, 0),
		PageSize: max(size, 0),
	}
}

func (h *Handlers) category(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	page, err := h.API.CategoryPosts(r.Context(), r.PathValue("slug"), opts)
	if err != nil {
		h.backendError(w, r, err)
		return
	}
	data := h.page(r, page.Category.Name)
	data.Query = opts.Search
	data.Data = page
	h.render(w, r, http.StatusOK, "category", data)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := h.page(r, "Search")
	data.Query = query
	if query == "" {
		h.render(w, r, http.StatusOK, "search", data)
		return
	}
	res, err := h.API.Search(r.Context(), query, listOptions(r))
	if err != nil {
		h.backendError(w, r, err)
		return
	}
	data.Data = res
	h.render(w, r, http.StatusOK, "search", data)
}

func (h *Handlers) post(w http.ResponseWriter, r *http.Request) {
	h.renderPost(w, r, r.PathValue("id"), nil, http.StatusOK)
}

func (h *Handlers) renderPost(w http.ResponseWriter, r *http.Request, id string, edit *PageData, status int) {
	detail, err := h.API.PostDetail(r.Context(), id)
	if err != nil {
		h.backendError(w, r, err)
		return
	}
	data := h.page(r, detail.Post.Title)
	if edit != nil {
		data.Flash, data.Errors, data.Form = edit.Flash, edit.Errors, edit.Form
	}
	data.Data = detail
	h.render(w, r, status, "post", data)
}

func (h *Handlers) createPostPage(w http.ResponseWriter, r *http.Request) {
	h.renderCreatePost(w, r, PageData{Form: map[string]string{
		"category_slug": r.URL.Query().Get("category"),
	}}, http.StatusOK)
}

func (h *Handlers) renderCreatePost(w http.ResponseWriter, r *http.Request, edit PageData, status int) {
	cats, err := h.API.Categories(r.Context())
	if err != nil {
		h.backendError(w, r, err)
		return
	}
	data := h.page(r, "New post")
	data.Flash, data.Errors, data.Form = edit.Flash, edit.Errors, edit.Form
	data.Data = cats
	h.render(w, r, status, "create_post", data)
}

func (h *Handlers) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := formValues(r, "title", "content", "category_slug", "tags")

	if fv := validation.Post(form["title"], form["content"], form["category_slug"], form["tags"]); !fv.Valid() {
		h.renderCreatePost(w, r, PageData{Errors: fv.Errors(), Form: form}, http.StatusUnprocessableEntity)
		return
	}

	created, err := h.API.CreatePost(r.Context(), forum.NewPost{
		Title:        strings.TrimSpace(form["title"]),
		Content:      strings.TrimSpace(form["content"]),
		CategorySlug: form["category_slug"],
		Tags:         strings.Join(validation.SplitList(form["tags"]), ","),
	})
	if err != nil {
		if edit, ok := rejected(err, msgCreatePostFailed); ok {
			edit.Form = form
			h.renderCreatePost(w, r, edit, http.StatusBadRequest)
			return
		}
		h.backendError(w, r, err)
		return
	}
	Redirect(w, r, "/posts/"+created.PostID)
}

func (h *Handlers) reply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	postID := r.PathValue("id")
	form := formValues(r, "content", "parent_reply_id")

	if fv := validation.Reply(form["content"]); !fv.Valid() {
		h.renderPost(w, r, postID, &PageData{Errors: fv.Errors(), Form: form}, http.StatusUnprocessableEntity)
		return
	}

	in := forum.NewReply{Content: strings.TrimSpace(form["content"])}
	if parent := strings.TrimSpace(form["parent_reply_id"]); parent != "" {
		in.ParentReplyID = &parent
	}
	created, err := h.API.Reply(r.Context(), postID, in)
	if err != nil {
		if edit, ok := rejected(err, msgReplyFailed); ok {
			edit.Form = form
			h.renderPost(w, r, postID, &edit, http.StatusBadRequest)
			return
		}
		h.backendError(w, r, err)
		return
	}
	Redirect(w, r, "/posts/"+postID+"#reply-"+created.ReplyID)
}

func (h *Handlers) likePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.API.LikePost(r.Context(), id)
	h.liked(w, r, res, err, "/posts/"+id)
}

func (h *Handlers) likeReply(w http.ResponseWriter, r *http.Request) {
	res, err := h.API.LikeReply(r.Context(), r.PathValue("id"))
	h.liked(w, r, res, err, localRedirect(r.PostFormValue("next"), h.Routes.Landing))
}

// liked answers htmx with the new like state and plain forms with a redirect.
func (h *Handlers) liked(w http.ResponseWriter, r *http.Request, res forum.LikeResult, err error, back string) {
	if err != nil {
		h.backendError(w, r, err)
		return
	}
	if IsHTMX(r) {
		WriteJSON(w, http.StatusOK, res)
		return
	}
	Redirect(w, r, back)
}

// rejected maps a backend 400 to form errors. Anything else is not a form
// problem and is left to backendError.
func rejected(err error, fallback string) (PageData, bool) {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		return PageData{}, false
	}
	var data PageData
	res := domainauth.FailedWithPayload(apiErr.Payload, fallback)
	failurePage(&data, res.Failure, fallback)
	return data, true
}
