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

// UserService defines the user queries required by the HTTP handlers.
type UserService interface {
	Me(ctx context.Context, userID string) ([]models.User, error)
	All(ctx context.Context) ([]models.User, error)
}

// UserHandler serves read-only user endpoints.
type UserHandler struct {
	UserService UserService
	Log         *zap.Logger
}

// meResponse wraps the caller's record as a one-element list.
type meResponse struct {
	User []models.User `json:"user"`
}

// Me handles GET /user/me. It must run behind middleware.SessionAuth.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Missing token")
		return
	}

	users, err := h.UserService.Me(r.Context(), claims.UserID)
	if errors.Is(err, service.ErrUserNotFound) {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	if err != nil {
		h.logError("lookup current user", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: users})
}

// All handles GET /user/all.
func (h *UserHandler) All(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.All(r.Context())
	if err != nil {
		h.logError("list users", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) logError(msg string, err error) {
	if h.Log != nil {
		h.Log.Error(msg, zap.Error(err))
	}
}
