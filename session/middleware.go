package session

import (
	"context"
	"net/http"
	"time"
)

// CookieName is the cookie carrying the session token to the route guard.
const CookieName = "auth_token"

// CookieMaxAge is the lifetime of the session cookie.
const CookieMaxAge = 7 * 24 * time.Hour

// AuthCookie returns the cookie storing token.
func AuthCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
	}
}

// ExpiredAuthCookie returns the cookie that removes the session cookie.
func ExpiredAuthCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
	}
}

// Verifier tells whether a token belongs to a live session. A nil Verifier
// accepts any non empty token.
type Verifier func(ctx context.Context, token string) bool

// Middleware redirects requests according to g, a request being
// authenticated when it carries a session cookie accepted by verify.
// Rejected cookies are expired.
func Middleware(g Guard, verify Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticated := false
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			authenticated = verify == nil || verify(r.Context(), c.Value)
			if !authenticated {
				http.SetCookie(w, ExpiredAuthCookie())
			}
		}
		if to := g.Decide(r.URL.Path, authenticated); to != "" {
			http.Redirect(w, r, to, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
