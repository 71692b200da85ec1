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
	"github.com/varangian-core/magical-board/pkg/utils"
)

// BoardHandler handles board-related HTTP requests
type BoardHandler struct {
	responder
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		responder:  responder{logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// CreateBoardRequest represents the request body for creating a board
type CreateBoardRequest struct {
	Name        string  `json:"name"`
	KingdomID   string  `json:"kingdomId"`
	UserID      string  `json:"userId"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// UpdateBoardRequest represents the request body for updating a board
type UpdateBoardRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	KingdomID   *string `json:"kingdomId,omitempty" validate:"omitempty,min=1"`
}

// ListBoards handles GET /boards?kingdomId=
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	q := queries.ListBoardsQuery{KingdomID: r.URL.Query().Get("kingdomId")}
	result, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// CreateBoard handles POST /boards
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req CreateBoardRequest
	if err := h.decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.KingdomID == "" || req.UserID == "" {
		h.respondError(w, http.StatusBadRequest, "Name, kingdom ID, and user ID are required")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	boardID := uuid.New().String()
	cmd := commands.CreateBoardCommand{
		BoardID:     boardID,
		Name:        req.Name,
		KingdomID:   req.KingdomID,
		UserID:      req.UserID,
		Description: req.Description,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetBoardQuery{BoardID: boardID})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

// GetBoard handles GET /boards/{boardID}
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetBoardQuery{BoardID: chi.URLParam(r, "boardID")})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// UpdateBoard handles PUT /boards/{boardID}
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")

	var req UpdateBoardRequest
	if err := h.decode(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	cmd := commands.UpdateBoardCommand{
		BoardID:     boardID,
		Name:        req.Name,
		Description: req.Description,
		KingdomID:   req.KingdomID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetBoardQuery{BoardID: boardID})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// DeleteBoard handles DELETE /boards/{boardID}
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	if err := h.commandBus.Send(r.Context(), commands.DeleteBoardCommand{BoardID: boardID}); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"id":      boardID,
		"message": "Board deleted successfully",
	})
}

// GetBoardUsers handles GET /boards/{boardID}/users
func (h *BoardHandler) GetBoardUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetBoardUsersQuery{BoardID: chi.URLParam(r, "boardID")})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}
