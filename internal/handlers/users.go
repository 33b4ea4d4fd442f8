package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/frckbrice/auth-service/internal/auth"
	"github.com/frckbrice/auth-service/internal/models"
	"github.com/frckbrice/auth-service/internal/services"
	pkghttp "github.com/frckbrice/auth-service/pkg/http"
)

// UserServiceInterface defines the interface for user management
type UserServiceInterface interface {
	GetUser(ctx context.Context, id string) (*services.UserResponse, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*services.UserResponse, error)
	UpdateUser(ctx context.Context, id, username, firstName, lastName string) (*services.UserResponse, error)
	DeleteUser(ctx context.Context, id, actorID string) error
	BlockUser(ctx context.Context, id, actorID string) error
	UnblockUser(ctx context.Context, id, actorID string) error
}

// UserHandler handles user management HTTP requests
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateUserRequest represents the request body for profile updates
type UpdateUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=32"`
	FirstName string `json:"first_name" validate:"omitempty,max=64"`
	LastName  string `json:"last_name" validate:"omitempty,max=64"`
}

// ListUsers returns a page of users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// GetUser returns a single user by id
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser replaces a user's profile fields
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, "Validation failed", fields)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req.Username, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid profile data")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user account
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteUser(r.Context(), id, actorID(r)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BlockUser blocks an account; its sessions die immediately
func (h *UserHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.BlockUser(r.Context(), id, actorID(r)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User blocked"})
}

// UnblockUser lifts a block
func (h *UserHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.UnblockUser(r.Context(), id, actorID(r)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User unblocked"})
}

func actorID(r *http.Request) string {
	if claims := auth.GetUserFromContext(r); claims != nil {
		return claims.UserID
	}
	return ""
}
