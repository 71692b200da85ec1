package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/commands"
	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/catalog"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/events"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// CreateUserHandler handles the CreateUserCommand
type CreateUserHandler struct {
	users     ports.UserRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCreateUserHandler creates a new handler instance
func NewCreateUserHandler(users ports.UserRepository, publisher ports.EventPublisher, logger *zap.Logger) *CreateUserHandler {
	return &CreateUserHandler{users: users, publisher: publisher, logger: logger}
}

// Handle creates the user. An avatar given only by id is completed from
// the catalog.
func (h *CreateUserHandler) Handle(ctx context.Context, cmd commands.CreateUserCommand) error {
	avatar := cmd.Avatar
	if known, ok := catalog.AvatarByID(avatar.ID); ok && avatar.Emoji == "" {
		avatar = known
	}

	user, err := entities.NewUser(cmd.UserID, cmd.Name, avatar)
	if err != nil {
		return err
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		return pkgerrors.Wrap(err, "failed to create user")
	}

	publish(ctx, h.publisher, h.logger, events.NewUserCreated(user.ID(), user.Name(), avatar.ID, time.Now().UTC()))
	h.logger.Info("User created", zap.String("user_id", user.ID()), zap.String("avatar", avatar.ID))
	return nil
}

// SelectUserHandler handles the SelectUserCommand
type SelectUserHandler struct {
	users  ports.UserRepository
	logger *zap.Logger
}

// NewSelectUserHandler creates a new handler instance
func NewSelectUserHandler(users ports.UserRepository, logger *zap.Logger) *SelectUserHandler {
	return &SelectUserHandler{users: users, logger: logger}
}

// Handle refreshes the user's lastActive time
func (h *SelectUserHandler) Handle(ctx context.Context, cmd commands.SelectUserCommand) error {
	if err := h.users.UpdateLastActive(ctx, cmd.UserID); err != nil {
		return err
	}
	h.logger.Debug("User selected", zap.String("user_id", cmd.UserID))
	return nil
}

// DeleteUserHandler handles the DeleteUserCommand
type DeleteUserHandler struct {
	users     ports.UserRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewDeleteUserHandler creates a new handler instance
func NewDeleteUserHandler(users ports.UserRepository, publisher ports.EventPublisher, logger *zap.Logger) *DeleteUserHandler {
	return &DeleteUserHandler{users: users, publisher: publisher, logger: logger}
}

// Handle deletes the user
func (h *DeleteUserHandler) Handle(ctx context.Context, cmd commands.DeleteUserCommand) error {
	deleted, err := h.users.DeleteUser(ctx, cmd.UserID)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to delete user")
	}
	if !deleted {
		return pkgerrors.NewNotFoundError("user")
	}

	publish(ctx, h.publisher, h.logger, events.NewUserDeleted(cmd.UserID, time.Now().UTC()))
	h.logger.Info("User deleted", zap.String("user_id", cmd.UserID))
	return nil
}

// publish sends events without failing the command; the write already
// happened
func publish(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, evts ...events.DomainEvent) {
	if publisher == nil || len(evts) == 0 {
		return
	}
	if err := publisher.PublishBatch(ctx, evts); err != nil {
		logger.Warn("Failed to publish events", zap.Int("count", len(evts)), zap.Error(err))
	}
}
