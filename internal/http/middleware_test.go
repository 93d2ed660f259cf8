package httpx

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/forums", nil))

	out := buf.String()
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "path=/forums")
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(slog.New(slog.NewTextHandler(&buf, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "boom")
}

func TestRedirect(t *testing.T) {
	rec := httptest.NewRecorder()
	Redirect(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "/forums")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/forums", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("Hx-Request", "true")
	rec = httptest.NewRecorder()
	Redirect(rec, req, "/forums")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/forums", rec.Header().Get("Hx-Redirect"))
}

func TestLocalRedirect(t *testing.T) {
	assert.Equal(t, "/posts/1", localRedirect("/posts/1", "/forums"))
	assert.Equal(t, "/forums", localRedirect("https://evil.example", "/forums"))
	assert.Equal(t, "/forums", localRedirect("//evil.example", "/forums"))
	assert.Equal(t, "/forums", localRedirect("/\\evil.example", "/forums"))
	assert.Equal(t, "/forums", localRedirect("", "/forums"))
}
