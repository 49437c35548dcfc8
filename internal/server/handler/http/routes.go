package http

import (
	"net/http"

	"github.com/atinyakov/cookieauth/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// authentication API.
//
// Routes:
//
//	GET       /health       → liveness probe
//	POST      /user/create  → authHandler.SignUp
//	GET, POST /auth/login   → authHandler.Login
//	GET       /auth/logout  → authHandler.Logout
//	GET       /user/all     → userHandler.All
//	GET       /user/me      → userHandler.Me (protected by SessionAuth)
//
// Middleware chain (applied in order):
//  1. RequestID                          tags each request with an id
//  2. Recoverer                           turns panics into 500
//  3. AllowContentType("application/json") rejects non-JSON request bodies
//  4. WithRequestLogging(logger)          logs each request
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	verifier middleware.Verifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/create", authHandler.SignUp)
		r.Get("/all", userHandler.All)

		// Protected group: requires a valid session cookie
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(verifier))
			r.Get("/me", userHandler.Me)
		})
	})

	return r
}
