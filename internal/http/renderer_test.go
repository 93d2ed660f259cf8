package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
)

func TestEmbeddedTemplatesParse(t *testing.T) {
	tr, err := NewTemplateRenderer(templateFS, discardLogger())
	require.NoError(t, err)

	for _, name := range []string{"home", "login", "register", "forums", "category", "post", "search", "create_post", "profile", "error"} {
		assert.Contains(t, tr.pages, name)
	}
}

func TestRenderEscapesAndSetsStatus(t *testing.T) {
	tr, err := NewTemplateRenderer(templateFS, discardLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = tr.Render(rec, http.StatusUnprocessableEntity, "login", PageData{
		Routes: domainauth.DefaultRoutes(),
		Form:   map[string]string{"username": `<script>alert(1)</script>`},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "<script>")
}

func TestRenderUnknownPage(t *testing.T) {
	tr, err := NewTemplateRenderer(templateFS, discardLogger())
	require.NoError(t, err)
	assert.Error(t, tr.Render(httptest.NewRecorder(), http.StatusOK, "missing", PageData{}))
}

func TestRenderFailureWritesNothing(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/layout.tmpl":      {Data: []byte(`{{define "layout"}}<p>{{template "content" .}}</p>{{end}}`)},
		"templates/pages/broke.tmpl": {Data: []byte(`{{define "content"}}{{.Missing.Field}}{{end}}`)},
	}
	tr, err := NewTemplateRenderer(fsys, discardLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, tr.Render(rec, http.StatusOK, "broke", PageData{}))
	assert.Zero(t, rec.Body.Len())
}
