package httpx

import (
	"net/http"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
)

// RequireAuthentication renders the wrapped view only for signed-in visitors
// and sends everyone else to the login page. The decision is taken on every
// request so a session lost mid-visit redirects on the next navigation.
func RequireAuthentication(routes domainauth.Routes) func(http.Handler) http.Handler {
	return guard(routes, domainauth.RequiresAuthentication)
}

// PublicOnlyView renders the wrapped view only for signed-out visitors;
// members are sent to the forum listing.
func PublicOnlyView(routes domainauth.Routes) func(http.Handler) http.Handler {
	return guard(routes, domainauth.PublicOnly)
}

type predicate func(domainauth.Snapshot, domainauth.Routes) domainauth.Decision

func guard(routes domainauth.Routes, decide predicate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := decide(SnapshotFromContext(r.Context()), routes)
			if !d.Render {
				Redirect(w, r, d.RedirectTo)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
