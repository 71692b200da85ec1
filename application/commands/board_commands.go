package commands

import (
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/pkg/utils"
)

// CreateBoardCommand creates a board in a kingdom
type CreateBoardCommand struct {
	BoardID     string  `json:"board_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=100"`
	KingdomID   string  `json:"kingdom_id" validate:"required"`
	UserID      string  `json:"user_id" validate:"required"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// Validate validates the command
func (cmd CreateBoardCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// UpdateBoardCommand changes a board's name, description or kingdom
type UpdateBoardCommand struct {
	BoardID     string  `json:"board_id" validate:"required"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	KingdomID   *string `json:"kingdom_id,omitempty" validate:"omitempty,min=1"`
}

// Validate validates the command
func (cmd UpdateBoardCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// Patch converts the command into a board patch
func (cmd UpdateBoardCommand) Patch() entities.BoardPatch {
	return entities.BoardPatch{
		Name:        cmd.Name,
		Description: cmd.Description,
		KingdomID:   cmd.KingdomID,
	}
}

// DeleteBoardCommand removes a board with its elements and images
type DeleteBoardCommand struct {
	BoardID string `json:"board_id" validate:"required"`
}

// Validate validates the command
func (cmd DeleteBoardCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// JoinBoardCommand records a user as a member of a board
type JoinBoardCommand struct {
	BoardID string `json:"board_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd JoinBoardCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}
