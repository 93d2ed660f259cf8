package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/domain/forum"
)

// APIPrefix is the path under which the fake backend serves its API.
const APIPrefix = "/api/v1"

type fakeAccount struct {
	password string
	user     domainauth.User
}

// FakeBackend is an in-process stand-in for the forum REST API. It issues
// opaque tokens, enforces "Authorization: Token <v>" on protected endpoints and
// serves a single seeded category.
type FakeBackend struct {
	Server *httptest.Server

	mu        sync.Mutex
	accounts  map[string]*fakeAccount
	tokens    map[string]string
	posts     []forum.Post
	replies   map[string][]forum.Reply
	liked     map[string]bool
	overrides map[string]http.HandlerFunc
	hits      map[string]int
	authSeen  map[string]string
	seq       int
}

// NewFakeBackend starts the fake and closes it when the test ends.
func NewFakeBackend(t TestingTB) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		accounts:  make(map[string]*fakeAccount),
		tokens:    make(map[string]string),
		replies:   make(map[string][]forum.Reply),
		liked:     make(map[string]bool),
		overrides: make(map[string]http.HandlerFunc),
		hits:      make(map[string]int),
		authSeen:  make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+APIPrefix+"/auth/status/", b.handleStatus)
	mux.HandleFunc("POST "+APIPrefix+"/auth/register/", b.handleRegister)
	mux.HandleFunc("POST "+APIPrefix+"/auth/login/", b.handleLogin)
	mux.HandleFunc("POST "+APIPrefix+"/auth/logout/", b.requireToken(b.handleLogout))
	mux.HandleFunc("GET "+APIPrefix+"/auth/profile/", b.requireToken(b.handleProfile))
	mux.HandleFunc("PUT "+APIPrefix+"/auth/profile/update/", b.requireToken(b.handleUpdateProfile))
	mux.HandleFunc("DELETE "+APIPrefix+"/auth/profile/delete/", b.requireToken(b.handleDelete))
	mux.HandleFunc("GET "+APIPrefix+"/forums/categories/", b.handleCategories)
	mux.HandleFunc("GET "+APIPrefix+"/forums/categories/{slug}/posts/", b.handleCategoryPosts)
	mux.HandleFunc("POST "+APIPrefix+"/forums/posts/", b.requireToken(b.handleCreatePost))
	mux.HandleFunc("GET "+APIPrefix+"/forums/posts/{id}/", b.handlePostDetail)
	mux.HandleFunc("POST "+APIPrefix+"/forums/posts/{id}/replies/", b.requireToken(b.handleReply))
	mux.HandleFunc("POST "+APIPrefix+"/forums/posts/{id}/like/", b.requireToken(b.handleLike))
	mux.HandleFunc("POST "+APIPrefix+"/forums/replies/{id}/like/", b.requireToken(b.handleLike))
	mux.HandleFunc("GET "+APIPrefix+"/forums/search/", b.handleSearch)

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.hits[key]++
		b.authSeen[key] = r.Header.Get("Authorization")
		override := b.overrides[key]
		b.mu.Unlock()
		if override != nil {
			override(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Server.Close)
	return b
}

// BaseURL is the API root to configure clients with.
func (b *FakeBackend) BaseURL() string { return b.Server.URL + APIPrefix }

// AddUser seeds an account and returns its profile.
func (b *FakeBackend) AddUser(username, password string) domainauth.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(username, password, "")
}

func (b *FakeBackend) addUserLocked(username, password, displayName string) domainauth.User {
	b.seq++
	u := domainauth.User{
		UserID:          fmt.Sprintf("00000000-0000-0000-0000-%012d", b.seq),
		Username:        username,
		PreferredTopics: []string{},
		IsAnonymous:     true,
		CreatedAt:       TestTime(),
	}
	if displayName != "" {
		u.DisplayName = &displayName
	}
	b.accounts[username] = &fakeAccount{password: password, user: u}
	return u
}

// IssueToken mints a valid token for an existing user.
func (b *FakeBackend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(username)
}

func (b *FakeBackend) issueLocked(username string) string {
	for tok, name := range b.tokens {
		if name == username {
			return tok
		}
	}
	b.seq++
	tok := fmt.Sprintf("tok-%s-%d", username, b.seq)
	b.tokens[tok] = username
	return tok
}

// RevokeToken makes a token invalid, as a server-side expiry would.
func (b *FakeBackend) RevokeToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tokens, token)
}

// Override replaces the handler for "METHOD /api/v1/path/".
func (b *FakeBackend) Override(methodPath string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[methodPath] = h
}

// Hits returns how many requests reached "METHOD /api/v1/path/".
func (b *FakeBackend) Hits(methodPath string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[methodPath]
}

// LastAuthorization returns the Authorization header of the last request to methodPath.
func (b *FakeBackend) LastAuthorization(methodPath string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.authSeen[methodPath]
}

// AddPost seeds a post in the default category and returns it.
func (b *FakeBackend) AddPost(title, content, author string) forum.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addPostLocked(forum.NewPost{Title: title, Content: content, CategorySlug: DefaultCategory.Slug}, author)
}

// DefaultCategory is the single board the fake serves.
var DefaultCategory = forum.Category{
	Name:        "Anxiety Support",
	Description: "A safe space to talk about anxiety",
	Slug:        "anxiety-support",
	Icon:        "leaf",
	Color:       "#6aa84f",
	Order:       1,
}

func (b *FakeBackend) addPostLocked(in forum.NewPost, author string) forum.Post {
	b.seq++
	cat := DefaultCategory
	p := forum.Post{
		PostID:    fmt.Sprintf("10000000-0000-0000-0000-%012d", b.seq),
		Title:     in.Title,
		Content:   in.Content,
		Author:    forum.Author{Username: author},
		Category:  &cat,
		Tags:      in.Tags,
		CreatedAt: TestTime().Add(time.Duration(b.seq) * time.Minute),
	}
	if acc, ok := b.accounts[author]; ok {
		p.Author.UserID = acc.user.UserID
		p.Author.DisplayName = acc.user.DisplayName
	}
	b.posts = append(b.posts, p)
	return p
}

func (b *FakeBackend) requireToken(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
		b.mu.Lock()
		username, valid := b.tokens[tok]
		b.mu.Unlock()
		if !ok || !valid {
			writeFakeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			return
		}
		next(w, r, username)
	}
}

func (b *FakeBackend) handleStatus(w http.ResponseWriter, r *http.Request) {
	tok, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
	b.mu.Lock()
	_, authed := b.tokens[tok]
	b.mu.Unlock()
	writeFakeJSON(w, http.StatusOK, forum.APIStatus{
		Status:        "API is running",
		Message:       "Mental Health Support Network API v1.0",
		Authenticated: authed,
	})
}

func (b *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in domainauth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	errs := map[string][]string{}
	if _, taken := b.accounts[in.Username]; taken {
		errs["username"] = []string{"A user with that username already exists."}
	}
	if in.Password != in.ConfirmPassword {
		errs["non_field_errors"] = []string{"Passwords don't match"}
	}
	if len(errs) > 0 {
		writeFakeJSON(w, http.StatusBadRequest, errs)
		return
	}

	u := b.addUserLocked(in.Username, in.Password, in.DisplayName)
	writeFakeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    u,
		"token":   b.issueLocked(in.Username),
	})
}

func (b *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[in.Username]
	if !ok || acc.password != in.Password {
		writeFakeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Invalid credentials"}})
		return
	}
	writeFakeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    acc.user,
		"token":   b.issueLocked(in.Username),
	})
}

func (b *FakeBackend) handleLogout(w http.ResponseWriter, r *http.Request, username string) {
	b.mu.Lock()
	for tok, name := range b.tokens {
		if name == username {
			delete(b.tokens, tok)
		}
	}
	b.mu.Unlock()
	writeFakeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (b *FakeBackend) handleProfile(w http.ResponseWriter, r *http.Request, username string) {
	b.mu.Lock()
	u := b.accounts[username].user
	b.mu.Unlock()
	writeFakeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (b *FakeBackend) handleUpdateProfile(w http.ResponseWriter, r *http.Request, username string) {
	var in domainauth.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc := b.accounts[username]
	if in.DisplayName != nil {
		if len(*in.DisplayName) > 50 {
			writeFakeJSON(w, http.StatusBadRequest, map[string][]string{
				"display_name": {"Ensure this field has no more than 50 characters."},
			})
			return
		}
		dn := *in.DisplayName
		acc.user.DisplayName = &dn
	}
	if in.Bio != nil {
		bio := *in.Bio
		acc.user.Bio = &bio
	}
	if in.PreferredTopics != nil {
		acc.user.PreferredTopics = append([]string(nil), (*in.PreferredTopics)...)
	}
	writeFakeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    acc.user,
	})
}

func (b *FakeBackend) handleDelete(w http.ResponseWriter, r *http.Request, username string) {
	b.mu.Lock()
	delete(b.accounts, username)
	for tok, name := range b.tokens {
		if name == username {
			delete(b.tokens, tok)
		}
	}
	b.mu.Unlock()
	writeFakeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (b *FakeBackend) handleCategories(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	cat := DefaultCategory
	cat.PostCount = len(b.posts)
	b.mu.Unlock()
	writeFakeJSON(w, http.StatusOK, map[string]any{"categories": []forum.Category{cat}})
}

func (b *FakeBackend) handleCategoryPosts(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("slug") != DefaultCategory.Slug {
		writeFakeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	posts := b.filterPosts(r.URL.Query().Get("search"))
	writeFakeJSON(w, http.StatusOK, forum.CategoryPage{
		Category:   DefaultCategory,
		Posts:      posts,
		Pagination: forum.Pagination{Page: 1, PageSize: 20, Total: len(posts)},
	})
}

func (b *FakeBackend) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"error": "Search query is required"})
		return
	}
	posts := b.filterPosts(q)
	writeFakeJSON(w, http.StatusOK, forum.SearchPage{
		Query:      q,
		Posts:      posts,
		Pagination: forum.Pagination{Page: 1, PageSize: 20, Total: len(posts)},
	})
}

func (b *FakeBackend) filterPosts(q string) []forum.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]forum.Post, 0, len(b.posts))
	needle := strings.ToLower(q)
	for _, p := range b.posts {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Content), needle) {
			out = append(out, p)
		}
	}
	return out
}

func (b *FakeBackend) findPostLocked(id string) (int, bool) {
	for i, p := range b.posts {
		if p.PostID == id {
			return i, true
		}
	}
	return 0, false
}

func (b *FakeBackend) handleCreatePost(w http.ResponseWriter, r *http.Request, username string) {
	var in forum.NewPost
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}
	if in.CategorySlug != DefaultCategory.Slug {
		writeFakeJSON(w, http.StatusBadRequest, map[string][]string{
			"category_slug": {"Invalid category or category is not active"},
		})
		return
	}
	b.mu.Lock()
	p := b.addPostLocked(in, username)
	b.mu.Unlock()
	writeFakeJSON(w, http.StatusCreated, map[string]any{"message": "Post created successfully", "post": p})
}

func (b *FakeBackend) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.findPostLocked(r.PathValue("id"))
	if !ok {
		writeFakeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	b.posts[i].ViewCount++
	replies := append([]forum.Reply{}, b.replies[b.posts[i].PostID]...)
	writeFakeJSON(w, http.StatusOK, forum.PostDetail{Post: b.posts[i], Replies: replies, ReplyCount: len(replies)})
}

func (b *FakeBackend) handleReply(w http.ResponseWriter, r *http.Request, username string) {
	var in forum.NewReply
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.findPostLocked(r.PathValue("id"))
	if !ok {
		writeFakeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	if b.posts[i].IsLocked {
		writeFakeJSON(w, http.StatusForbidden, map[string]string{"error": "This post is locked and cannot receive new replies"})
		return
	}
	b.seq++
	reply := forum.Reply{
		ReplyID:       fmt.Sprintf("20000000-0000-0000-0000-%012d", b.seq),
		Content:       in.Content,
		Author:        forum.Author{Username: username},
		ParentReply:   in.ParentReplyID,
		IsNestedReply: in.ParentReplyID != nil,
		CreatedAt:     TestTime().Add(time.Duration(b.seq) * time.Minute),
	}
	id := b.posts[i].PostID
	b.replies[id] = append(b.replies[id], reply)
	b.posts[i].ReplyCount++
	writeFakeJSON(w, http.StatusCreated, map[string]any{"message": "Reply posted successfully", "reply": reply})
}

func (b *FakeBackend) handleLike(w http.ResponseWriter, r *http.Request, username string) {
	key := username + ":" + r.URL.Path
	b.mu.Lock()
	liked := !b.liked[key]
	b.liked[key] = liked
	b.mu.Unlock()

	res := forum.LikeResult{Liked: liked, Message: "Post unliked successfully"}
	if liked {
		res.LikeCount = 1
		res.Message = "Post liked successfully"
	}
	writeFakeJSON(w, http.StatusOK, res)
}

func writeFakeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
