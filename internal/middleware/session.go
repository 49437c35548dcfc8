// Package middleware provides HTTP middlewares for session authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/cookieauth/internal/service"
	"github.com/atinyakov/cookieauth/internal/token"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "auth_token"

type ctxKey string

const claimsKey ctxKey = "claims"

// Verifier recovers the caller's identity from a session cookie value.
type Verifier interface {
	Verify(ctx context.Context, cookieValue string) (token.Claims, error)
}

// SessionAuth rejects requests without a valid session cookie with 401.
//
// On success the verified claims are stored in the request context and can
// be read downstream with ClaimsFromContext.
func SessionAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var value string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				value = c.Value
			}

			claims, err := v.Verify(r.Context(), value)
			switch {
			case err == nil:
			case errors.Is(err, service.ErrMissingToken):
				writeMessage(w, http.StatusUnauthorized, "Missing token")
				return
			case errors.Is(err, service.ErrInvalidToken):
				writeMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			default:
				writeMessage(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the session claims stored by SessionAuth.
func ClaimsFromContext(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(token.Claims)
	return claims, ok
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
