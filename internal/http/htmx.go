package httpx

import (
	"net/http"
	"strings"
)

// IsHTMX reports whether the request was initiated by htmx (Hx-Request: true).
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// SetHXRedirect instructs htmx to redirect the browser to the given URL.
func SetHXRedirect(w http.ResponseWriter, url string) { w.Header().Set("Hx-Redirect", url) }

// Redirect sends the browser to target: a 303 for plain requests, an
// Hx-Redirect header with 200 for htmx requests so the client navigates
// instead of swapping the redirected page into a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		SetHXRedirect(w, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
