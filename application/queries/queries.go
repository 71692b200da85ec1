package queries

import (
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
	"github.com/varangian-core/magical-board/pkg/utils"
)

// ListKingdomsQuery lists the kingdom catalog
type ListKingdomsQuery struct{}

func (ListKingdomsQuery) Validate() error { return nil }

// GetKingdomQuery fetches one kingdom
type GetKingdomQuery struct {
	KingdomID string `validate:"required"`
}

func (q GetKingdomQuery) Validate() error { return utils.ValidateStruct(q) }

// ListAvatarsQuery lists selectable avatars
type ListAvatarsQuery struct{}

func (ListAvatarsQuery) Validate() error { return nil }

// ListTemplatesQuery lists timeline templates
type ListTemplatesQuery struct{}

func (ListTemplatesQuery) Validate() error { return nil }

// ListUsersQuery lists users, most recently active first
type ListUsersQuery struct{}

func (ListUsersQuery) Validate() error { return nil }

// GetUserQuery fetches one user
type GetUserQuery struct {
	UserID string `validate:"required"`
}

func (q GetUserQuery) Validate() error { return utils.ValidateStruct(q) }

// ListBoardsQuery lists the boards of a kingdom
type ListBoardsQuery struct {
	KingdomID string
}

// Validate validates the query
func (q ListBoardsQuery) Validate() error {
	if q.KingdomID == "" {
		return pkgerrors.NewValidationError("Kingdom ID is required")
	}
	return nil
}

// GetBoardQuery fetches a board with its elements
type GetBoardQuery struct {
	BoardID string `validate:"required"`
}

func (q GetBoardQuery) Validate() error { return utils.ValidateStruct(q) }

// GetBoardUsersQuery lists the members of a board
type GetBoardUsersQuery struct {
	BoardID string `validate:"required"`
}

func (q GetBoardUsersQuery) Validate() error { return utils.ValidateStruct(q) }

// ListBoardImagesQuery lists a board's stored images
type ListBoardImagesQuery struct {
	BoardID string `validate:"required"`
}

func (q ListBoardImagesQuery) Validate() error { return utils.ValidateStruct(q) }

// GetStorageInfoQuery reports image storage usage
type GetStorageInfoQuery struct{}

func (GetStorageInfoQuery) Validate() error { return nil }
