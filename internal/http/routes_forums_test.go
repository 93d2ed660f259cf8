package httpx

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhsn/forumweb/internal/domain/forum"
	"github.com/mhsn/forumweb/internal/testutil"
)

func TestPublicForumPages(t *testing.T) {
	g := newGateway(t)
	g.backend.AddUser("bob", "builder123")
	post := g.backend.AddPost("Finding calm before exams", "Breathing exercises helped me a lot this week.", "bob")

	p := g.get("/forums")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, testutil.DefaultCategory.Name)

	p = g.get("/forums/" + testutil.DefaultCategory.Slug)
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, post.Title)

	p = g.get("/forums/no-such-board")
	assert.Equal(t, http.StatusNotFound, p.Status)

	p = g.get("/posts/" + post.PostID)
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Breathing exercises")
	assert.Contains(t, p.Body, "to reply.")
}

func TestSearch(t *testing.T) {
	g := newGateway(t)
	g.backend.AddPost("Sleep routines that work", "Consistent bedtimes and no screens.", "bob")

	p := g.get("/search")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Equal(t, 0, g.backend.Hits("GET /api/v1/forums/search/"))

	p = g.get("/search?q=sleep")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Sleep routines that work")
	assert.Contains(t, p.Body, "1 results")
}

func TestMemberRoutesRequireSignIn(t *testing.T) {
	g := newGateway(t)

	for _, path := range []string{"/create-post", "/profile"} {
		p := g.get(path)
		assert.Equal(t, http.StatusSeeOther, p.Status, path)
		assert.Equal(t, "/login", p.Location, path)
	}
	for _, path := range []string{"/create-post", "/posts/x/replies", "/posts/x/like", "/replies/x/like", "/profile/delete"} {
		p := g.post(path, url.Values{})
		assert.Equal(t, http.StatusSeeOther, p.Status, path)
	}
	assert.Equal(t, 0, g.backend.Hits("POST /api/v1/forums/posts/"))
}

func TestCreatePostAndReply(t *testing.T) {
	g := newGateway(t)
	g.signIn()

	p := g.get("/create-post?category=" + testutil.DefaultCategory.Slug)
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "selected")

	p = g.post("/create-post", url.Values{"title": {"short"}, "content": {"tiny"}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Contains(t, p.Body, "Title must be at least 10 characters")
	assert.Contains(t, p.Body, "Please select a category")
	assert.Equal(t, 0, g.backend.Hits("POST /api/v1/forums/posts/"))

	p = g.post("/create-post", url.Values{
		"title":         {"My first week here"},
		"content":       {"Thank you all for being so welcoming."},
		"category_slug": {"retired-board"},
	})
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Contains(t, p.Body, "Invalid category or category is not active")

	p = g.post("/create-post", url.Values{
		"title":         {"My first week here"},
		"content":       {"Thank you all for being so welcoming."},
		"category_slug": {testutil.DefaultCategory.Slug},
		"tags":          {"gratitude, intro"},
	})
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)
	require.True(t, strings.HasPrefix(p.Location, "/posts/"))
	postPath := p.Location

	p = g.post(postPath+"/replies", url.Values{"content": {"  "}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Contains(t, p.Body, "Reply is required")

	p = g.post(postPath+"/replies", url.Values{"content": {"Welcome! Glad you found us."}})
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)
	assert.Contains(t, p.Location, postPath+"#reply-")

	p = g.get(postPath)
	assert.Contains(t, p.Body, "Glad you found us.")
	assert.Contains(t, p.Body, "gratitude")
}

func TestLikeTogglesOverHTMX(t *testing.T) {
	g := newGateway(t)
	g.signIn()
	post := g.backend.AddPost("Small wins thread", "Share something good from today.", "alice")

	p := g.post("/posts/"+post.PostID+"/like", nil, "Hx-Request", "true")
	require.Equal(t, http.StatusOK, p.Status)
	var res forum.LikeResult
	require.NoError(t, json.Unmarshal([]byte(p.Body), &res))
	assert.True(t, res.Liked)

	p = g.post("/posts/"+post.PostID+"/like", nil)
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/posts/"+post.PostID, p.Location)
}

func TestLikeReplyRedirectStaysLocal(t *testing.T) {
	g := newGateway(t)
	g.signIn()

	p := g.post("/replies/r1/like", url.Values{"next": {"//evil.example"}})
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/forums", p.Location)
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	g := newGateway(t)
	p := g.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Contains(t, p.Body, "Not found")
}

func TestBackendDownRendersBadGateway(t *testing.T) {
	g := newGateway(t)
	g.backend.Override("GET /api/v1/forums/categories/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	p := g.get("/forums")
	assert.Equal(t, http.StatusBadGateway, p.Status)
	assert.Contains(t, p.Body, "unavailable")
}
