package auth

// Routes names the two redirect targets the guards can send a visitor to.
type Routes struct {
	Login   string
	Landing string
}

// DefaultRoutes matches the forum's navigation.
func DefaultRoutes() Routes {
	return Routes{Login: "/login", Landing: "/forums"}
}

// Decision is the outcome of evaluating a guard for one render.
type Decision struct {
	Render     bool
	RedirectTo string
}

// RequiresAuthentication renders only when a user is present; otherwise it
// sends the visitor to the login entry point.
func RequiresAuthentication(s Snapshot, routes Routes) Decision {
	if !s.Authenticated() {
		return Decision{RedirectTo: routes.Login}
	}
	return Decision{Render: true}
}

// PublicOnly renders only when no user is present; signed-in members are sent
// to the forum listing instead of seeing login or registration.
func PublicOnly(s Snapshot, routes Routes) Decision {
	if s.Authenticated() {
		return Decision{RedirectTo: routes.Landing}
	}
	return Decision{Render: true}
}
