// Package http provides the HTTP handlers for signup, login, logout and
// user queries, and the chi router that mounts them.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/cookieauth/internal/middleware"
	"github.com/atinyakov/cookieauth/internal/models"
	"github.com/atinyakov/cookieauth/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the session operations required by the HTTP handlers.
type AuthService interface {
	// SignUp creates a user and issues its first session.
	SignUp(ctx context.Context, name, email, password string) (models.User, service.Session, error)
	// Login issues a session for matching credentials.
	Login(ctx context.Context, email, password string) (service.Session, error)
	// Logout revokes the session carried in cookieValue, if any.
	Logout(ctx context.Context, cookieValue string)
}

// AuthHandler handles HTTP requests that create or end sessions.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Cookie writes the session cookie.
	Cookie SessionCookie
	// Log receives details of internal errors; nil disables logging.
	Log *zap.Logger
}

// SignUpRequest represents the JSON payload for user creation.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /user/create. On success it responds 201 and sets
// the session cookie for the new user.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	_, sess, err := h.AuthService.SignUp(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrUserExists):
		writeMessage(w, http.StatusConflict, "user already exists")
		return
	default:
		h.logError("signup failed", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Cookie.Set(w, sess)
	writeMessage(w, http.StatusCreated, "User created successfully")
}

// Login handles GET and POST /auth/login with a JSON body holding email
// and password. Unknown credentials get 401 and no cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	sess, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	default:
		h.logError("login failed", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Cookie.Set(w, sess)
	writeMessage(w, http.StatusOK, "Logged in successfully")
}

// Logout handles GET /auth/logout. It always succeeds, with or without a cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.AuthService.Logout(r.Context(), c.Value)
	}

	h.Cookie.Clear(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) logError(msg string, err error) {
	if h.Log != nil {
		h.Log.Error(msg, zap.Error(err))
	}
}
