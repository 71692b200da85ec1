package commands

import (
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
	"github.com/varangian-core/magical-board/pkg/utils"
)

// CreateUserCommand registers a user with a chosen avatar
type CreateUserCommand struct {
	UserID string              `json:"user_id" validate:"required"`
	Name   string              `json:"name" validate:"required,max=50"`
	Avatar valueobjects.Avatar `json:"avatar"`
}

// Validate validates the command
func (cmd CreateUserCommand) Validate() error {
	if err := utils.ValidateStruct(cmd); err != nil {
		return err
	}
	if cmd.Avatar.IsZero() {
		return pkgerrors.NewValidationError("avatar is required")
	}
	return nil
}

// SelectUserCommand marks a user as the active one
type SelectUserCommand struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd SelectUserCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// DeleteUserCommand removes a user
type DeleteUserCommand struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd DeleteUserCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}
