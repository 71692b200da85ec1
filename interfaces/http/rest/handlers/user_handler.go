package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/commands"
	"github.com/varangian-core/magical-board/application/commands/bus"
	"github.com/varangian-core/magical-board/application/queries"
	querybus "github.com/varangian-core/magical-board/application/queries/bus"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	"github.com/varangian-core/magical-board/interfaces/http/rest/middleware"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewUserHandler creates a new user handler
func NewUserHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		responder:  responder{logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name   string               `json:"name"`
	Avatar *valueobjects.Avatar `json:"avatar"`
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListUsersQuery{})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := h.decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Avatar == nil || req.Avatar.IsZero() {
		h.respondError(w, http.StatusBadRequest, "Name and avatar are required")
		return
	}

	userID := uuid.New().String()
	cmd := commands.CreateUserCommand{UserID: userID, Name: req.Name, Avatar: *req.Avatar}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetUserQuery{UserID: userID})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

// CurrentUser handles GET /users/current. Anonymous callers get null.
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.respondJSON(w, http.StatusOK, nil)
		return
	}
	h.respondJSON(w, http.StatusOK, queries.NewUserResult(user))
}

// SelectUser handles POST /users/{userID}/select
func (h *UserHandler) SelectUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.commandBus.Send(r.Context(), commands.SelectUserCommand{UserID: userID}); err != nil {
		h.respondErr(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetUserQuery{UserID: userID})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// DeleteUser handles DELETE /users/{userID}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.commandBus.Send(r.Context(), commands.DeleteUserCommand{UserID: userID}); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"id":      userID,
		"message": "User deleted successfully",
	})
}
