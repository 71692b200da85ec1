package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/application/queries"
	"github.com/varangian-core/magical-board/domain/catalog"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// CatalogHandler serves the static catalog queries
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Kingdoms lists every kingdom
func (h *CatalogHandler) Kingdoms(ctx context.Context, _ queries.ListKingdomsQuery) ([]catalog.Kingdom, error) {
	return catalog.Kingdoms(), nil
}

// Kingdom returns one kingdom
func (h *CatalogHandler) Kingdom(ctx context.Context, q queries.GetKingdomQuery) (*catalog.Kingdom, error) {
	k, ok := catalog.KingdomByID(q.KingdomID)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("kingdom")
	}
	return &k, nil
}

// Avatars lists selectable avatars
func (h *CatalogHandler) Avatars(ctx context.Context, _ queries.ListAvatarsQuery) ([]valueobjects.Avatar, error) {
	return catalog.Avatars(), nil
}

// Templates lists timeline templates
func (h *CatalogHandler) Templates(ctx context.Context, _ queries.ListTemplatesQuery) ([]entities.TimelineTemplate, error) {
	return catalog.Templates(), nil
}

// UserQueryHandler serves user queries
type UserQueryHandler struct {
	users ports.UserRepository
}

// NewUserQueryHandler creates a new user query handler
func NewUserQueryHandler(users ports.UserRepository) *UserQueryHandler {
	return &UserQueryHandler{users: users}
}

// List returns users, most recently active first
func (h *UserQueryHandler) List(ctx context.Context, _ queries.ListUsersQuery) ([]queries.UserResult, error) {
	users, err := h.users.GetAllUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to fetch users")
	}
	out := make([]queries.UserResult, len(users))
	for i, u := range users {
		out[i] = queries.NewUserResult(u)
	}
	return out, nil
}

// Get returns one user
func (h *UserQueryHandler) Get(ctx context.Context, q queries.GetUserQuery) (*queries.UserResult, error) {
	user, err := h.users.GetUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	result := queries.NewUserResult(user)
	return &result, nil
}

// BoardQueryHandler serves board queries
type BoardQueryHandler struct {
	boards   ports.BoardRepository
	elements ports.ElementRepository
	users    ports.UserRepository
	logger   *zap.Logger
}

// NewBoardQueryHandler creates a new board query handler
func NewBoardQueryHandler(
	boards ports.BoardRepository,
	elements ports.ElementRepository,
	users ports.UserRepository,
	logger *zap.Logger,
) *BoardQueryHandler {
	return &BoardQueryHandler{
		boards:   boards,
		elements: elements,
		users:    users,
		logger:   logger,
	}
}

// List returns a kingdom's boards, most recently updated first
func (h *BoardQueryHandler) List(ctx context.Context, q queries.ListBoardsQuery) ([]queries.BoardResult, error) {
	boards, err := h.boards.GetBoardsByKingdom(ctx, q.KingdomID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to fetch boards")
	}
	out := make([]queries.BoardResult, len(boards))
	for i, b := range boards {
		out[i] = queries.NewBoardResult(b)
	}
	return out, nil
}

// Get returns a board with its elements in zIndex order
func (h *BoardQueryHandler) Get(ctx context.Context, q queries.GetBoardQuery) (*queries.BoardDetailResult, error) {
	board, err := h.boards.GetBoard(ctx, q.BoardID)
	if err != nil {
		return nil, err
	}
	records, err := h.elements.GetBoardElements(ctx, q.BoardID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to fetch board elements")
	}

	elements := make([]*entities.BoardElement, 0, len(records))
	for _, rec := range records {
		el, err := rec.ToElement()
		if err != nil {
			h.logger.Warn("Skipping unreadable element",
				zap.String("board_id", q.BoardID),
				zap.String("element_id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		elements = append(elements, el)
	}

	return &queries.BoardDetailResult{
		BoardResult: queries.NewBoardResult(board),
		Elements:    queries.NewElementResults(elements),
	}, nil
}

// Users returns the board's members in join order. Members whose user
// record is gone are left out.
func (h *BoardQueryHandler) Users(ctx context.Context, q queries.GetBoardUsersQuery) ([]queries.UserResult, error) {
	if _, err := h.boards.GetBoard(ctx, q.BoardID); err != nil {
		return nil, err
	}
	ids, err := h.boards.GetBoardUsers(ctx, q.BoardID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to fetch board users")
	}

	out := make([]queries.UserResult, 0, len(ids))
	for _, id := range ids {
		user, err := h.users.GetUser(ctx, id)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, queries.NewUserResult(user))
	}
	return out, nil
}

// ImageQueryHandler serves image store queries
type ImageQueryHandler struct {
	images ports.ImageStore
}

// NewImageQueryHandler creates a new image query handler
func NewImageQueryHandler(images ports.ImageStore) *ImageQueryHandler {
	return &ImageQueryHandler{images: images}
}

// List returns a board's images
func (h *ImageQueryHandler) List(ctx context.Context, q queries.ListBoardImagesQuery) ([]ports.StoredImage, error) {
	return h.images.ListByBoard(ctx, q.BoardID)
}

// Info returns storage usage
func (h *ImageQueryHandler) Info(ctx context.Context, _ queries.GetStorageInfoQuery) (ports.StorageInfo, error) {
	return h.images.Info(ctx)
}
