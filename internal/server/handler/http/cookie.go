package http

import (
	"net/http"
	"time"

	"github.com/atinyakov/cookieauth/internal/middleware"
	"github.com/atinyakov/cookieauth/internal/service"
)

// SessionCookie writes and clears the auth_token cookie.
type SessionCookie struct {
	// Secure marks the cookie HTTPS-only.
	Secure bool
	// now is used to compute Max-Age; nil means time.Now.
	now func() time.Time
}

// Set stores the session token in the response. The cookie expires
// together with the token.
func (c SessionCookie) Set(w http.ResponseWriter, sess service.Session) {
	now := time.Now
	if c.now != nil {
		now = c.now
	}

	maxAge := int(sess.ExpiresAt.Sub(now()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear instructs the client to drop the session cookie.
func (c SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
