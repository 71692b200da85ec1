package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/commands"
	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/application/sessions"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/events"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// CreateBoardHandler handles the CreateBoardCommand
type CreateBoardHandler struct {
	boards    ports.BoardRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCreateBoardHandler creates a new handler instance
func NewCreateBoardHandler(boards ports.BoardRepository, publisher ports.EventPublisher, logger *zap.Logger) *CreateBoardHandler {
	return &CreateBoardHandler{boards: boards, publisher: publisher, logger: logger}
}

// Handle creates the board. The repository adds the creator as a member.
func (h *CreateBoardHandler) Handle(ctx context.Context, cmd commands.CreateBoardCommand) error {
	board, err := entities.NewBoard(cmd.BoardID, cmd.Name, cmd.KingdomID, cmd.UserID, cmd.Description)
	if err != nil {
		return err
	}
	if err := h.boards.CreateBoard(ctx, board); err != nil {
		return pkgerrors.Wrap(err, "failed to create board")
	}

	publish(ctx, h.publisher, h.logger,
		events.NewBoardCreated(board.ID(), board.KingdomID(), board.CreatedBy(), board.Name(), board.CreatedAt()))
	h.logger.Info("Board created",
		zap.String("board_id", board.ID()),
		zap.String("kingdom_id", board.KingdomID()),
		zap.String("user_id", board.CreatedBy()),
	)
	return nil
}

// UpdateBoardHandler handles the UpdateBoardCommand
type UpdateBoardHandler struct {
	boards    ports.BoardRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewUpdateBoardHandler creates a new handler instance
func NewUpdateBoardHandler(boards ports.BoardRepository, publisher ports.EventPublisher, logger *zap.Logger) *UpdateBoardHandler {
	return &UpdateBoardHandler{boards: boards, publisher: publisher, logger: logger}
}

// Handle applies the patch
func (h *UpdateBoardHandler) Handle(ctx context.Context, cmd commands.UpdateBoardCommand) error {
	board, err := h.boards.UpdateBoard(ctx, cmd.BoardID, cmd.Patch())
	if err != nil {
		return pkgerrors.Wrap(err, "failed to update board")
	}
	if board == nil {
		return pkgerrors.NewNotFoundError("board")
	}

	publish(ctx, h.publisher, h.logger, events.NewBoardUpdated(board.ID(), board.UpdatedAt()))
	return nil
}

// DeleteBoardHandler handles the DeleteBoardCommand. An open session is
// closed first so its last changes land before the elements are removed.
type DeleteBoardHandler struct {
	boards    ports.BoardRepository
	elements  ports.ElementRepository
	images    ports.ImageStore
	sessions  *sessions.Manager
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewDeleteBoardHandler creates a new handler instance
func NewDeleteBoardHandler(
	boards ports.BoardRepository,
	elements ports.ElementRepository,
	images ports.ImageStore,
	sessionManager *sessions.Manager,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *DeleteBoardHandler {
	return &DeleteBoardHandler{
		boards:    boards,
		elements:  elements,
		images:    images,
		sessions:  sessionManager,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle deletes the board with its elements and images
func (h *DeleteBoardHandler) Handle(ctx context.Context, cmd commands.DeleteBoardCommand) error {
	if _, err := h.boards.GetBoard(ctx, cmd.BoardID); err != nil {
		return err
	}

	if h.sessions != nil && h.sessions.IsOpen(cmd.BoardID) {
		if err := h.sessions.Close(ctx, cmd.BoardID); err != nil && !pkgerrors.IsNotFound(err) {
			return err
		}
	}

	if err := h.elements.DeleteBoardElements(ctx, cmd.BoardID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete board elements")
	}
	if h.images != nil {
		if err := h.images.ClearBoard(ctx, cmd.BoardID); err != nil {
			h.logger.Warn("Failed to clear board images", zap.String("board_id", cmd.BoardID), zap.Error(err))
		}
	}

	deleted, err := h.boards.DeleteBoard(ctx, cmd.BoardID)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to delete board")
	}
	if !deleted {
		return pkgerrors.NewNotFoundError("board")
	}

	publish(ctx, h.publisher, h.logger, events.NewBoardDeleted(cmd.BoardID, time.Now().UTC()))
	h.logger.Info("Board deleted", zap.String("board_id", cmd.BoardID))
	return nil
}

// JoinBoardHandler handles the JoinBoardCommand
type JoinBoardHandler struct {
	boards ports.BoardRepository
	logger *zap.Logger
}

// NewJoinBoardHandler creates a new handler instance
func NewJoinBoardHandler(boards ports.BoardRepository, logger *zap.Logger) *JoinBoardHandler {
	return &JoinBoardHandler{boards: boards, logger: logger}
}

// Handle adds the user to the board's members. Repeated joins are no-ops.
func (h *JoinBoardHandler) Handle(ctx context.Context, cmd commands.JoinBoardCommand) error {
	return h.boards.AddUserToBoard(ctx, cmd.BoardID, cmd.UserID)
}
