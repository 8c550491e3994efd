package session

import (
	"slices"
	"strings"
)

// Routes.
const (
	LoginRoute = "/login"
	HomeRoute  = "/"
)

// Guard routes requests between public and protected pages.
type Guard struct {
	Protected []string // require a session
	Public    []string // only for anonymous users
}

// DefaultGuard returns the guard of the Aurora pages.
func DefaultGuard() Guard {
	return Guard{
		Protected: []string{"/", "/dashboard", "/assets", "/transactions", "/analysis", "/settings", "/health"},
		Public:    []string{"/login", "/register"},
	}
}

// Decide returns where a request for path must be redirected, or "" if it
// can be served.
//
// Anonymous requests for protected routes go to the login page,
// authenticated requests for public routes go home. A protected route also
// covers its sub paths, except for the root.
func (g Guard) Decide(path string, authenticated bool) string {
	path = clean(path)
	switch {
	case !authenticated && g.IsProtected(path):
		return LoginRoute
	case authenticated && slices.Contains(g.Public, path):
		return HomeRoute
	default:
		return ""
	}
}

// IsProtected reports whether path requires a session.
func (g Guard) IsProtected(path string) bool {
	path = clean(path)
	for _, p := range g.Protected {
		if path == p || p != "/" && strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func clean(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
