package ports

import (
	"context"

	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/events"
)

// BoardRepository defines the interface for board persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type BoardRepository interface {
	// CreateBoard persists a new board and adds its creator to the board's users
	CreateBoard(ctx context.Context, board *entities.Board) error

	// GetBoard retrieves a board, returning a not-found error when missing
	GetBoard(ctx context.Context, id string) (*entities.Board, error)

	// GetBoardsByKingdom lists a kingdom's boards, most recently updated first
	GetBoardsByKingdom(ctx context.Context, kingdomID string) ([]*entities.Board, error)

	// UpdateBoard applies a patch and touches updatedAt. Returns nil when
	// the board does not exist.
	UpdateBoard(ctx context.Context, id string, patch entities.BoardPatch) (*entities.Board, error)

	// DeleteBoard removes a board and reports whether it existed
	DeleteBoard(ctx context.Context, id string) (bool, error)

	// AddUserToBoard records board membership. Repeated calls are harmless.
	AddUserToBoard(ctx context.Context, boardID, userID string) error

	// GetBoardUsers returns the ids of users who joined the board
	GetBoardUsers(ctx context.Context, boardID string) ([]string, error)
}

// ElementRepository defines the interface for board element persistence
type ElementRepository interface {
	// AddElement stores a new element record
	AddElement(ctx context.Context, record ElementRecord) error

	// UpdateElement applies a patch. Returns nil when the element does not exist.
	UpdateElement(ctx context.Context, id string, patch ElementRecordPatch) (*ElementRecord, error)

	// DeleteElement removes an element and reports whether it existed
	DeleteElement(ctx context.Context, id string) (bool, error)

	// GetBoardElements returns a board's elements ordered by zIndex
	GetBoardElements(ctx context.Context, boardID string) ([]ElementRecord, error)

	// DeleteBoardElements removes every element of a board
	DeleteBoardElements(ctx context.Context, boardID string) error
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// CreateUser persists a new user
	CreateUser(ctx context.Context, user *entities.User) error

	// GetUser retrieves a user, returning a not-found error when missing
	GetUser(ctx context.Context, id string) (*entities.User, error)

	// GetAllUsers lists users, most recently active first
	GetAllUsers(ctx context.Context) ([]*entities.User, error)

	// UpdateLastActive marks the user as active now
	UpdateLastActive(ctx context.Context, id string) error

	// DeleteUser removes a user and reports whether it existed
	DeleteUser(ctx context.Context, id string) (bool, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
