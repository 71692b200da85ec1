package events

import (
	"time"

	"github.com/varangian-core/magical-board/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypeElementAdded   = "element.added"
	TypeElementUpdated = "element.updated"
	TypeElementDeleted = "element.deleted"
	TypeBoardCreated   = "board.created"
	TypeBoardUpdated   = "board.updated"
	TypeBoardDeleted   = "board.deleted"
	TypeUserCreated    = "user.created"
	TypeUserDeleted    = "user.deleted"
	TypeImageStored    = "image.stored"
)

// Element Events

// ElementAdded is raised when an element is inserted into a board
type ElementAdded struct {
	BaseEvent
	BoardID     string                 `json:"board_id"`
	ElementID   valueobjects.ElementID `json:"element_id"`
	ElementType string                 `json:"element_type"`
	ZIndex      int                    `json:"z_index"`
	CreatedBy   string                 `json:"created_by"`
}

// NewElementAdded creates an ElementAdded event
func NewElementAdded(boardID string, elementID valueobjects.ElementID, elementType string, zIndex int, createdBy string, timestamp time.Time) ElementAdded {
	return ElementAdded{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   TypeElementAdded,
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:     boardID,
		ElementID:   elementID,
		ElementType: elementType,
		ZIndex:      zIndex,
		CreatedBy:   createdBy,
	}
}

// ElementUpdated is raised when any element field changes
type ElementUpdated struct {
	BaseEvent
	BoardID     string                 `json:"board_id"`
	ElementID   valueobjects.ElementID `json:"element_id"`
	ElementType string                 `json:"element_type"`
	Fields      []string               `json:"fields"`
}

// NewElementUpdated creates an ElementUpdated event
func NewElementUpdated(boardID string, elementID valueobjects.ElementID, elementType string, fields []string, timestamp time.Time) ElementUpdated {
	return ElementUpdated{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   TypeElementUpdated,
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:     boardID,
		ElementID:   elementID,
		ElementType: elementType,
		Fields:      fields,
	}
}

// ElementDeleted is raised when an element is removed from a board
type ElementDeleted struct {
	BaseEvent
	BoardID     string                 `json:"board_id"`
	ElementID   valueobjects.ElementID `json:"element_id"`
	ElementType string                 `json:"element_type"`
}

// NewElementDeleted creates an ElementDeleted event
func NewElementDeleted(boardID string, elementID valueobjects.ElementID, elementType string, timestamp time.Time) ElementDeleted {
	return ElementDeleted{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   TypeElementDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:     boardID,
		ElementID:   elementID,
		ElementType: elementType,
	}
}

// Board Events

// BoardCreated is raised when a board is created
type BoardCreated struct {
	BaseEvent
	BoardID   string `json:"board_id"`
	KingdomID string `json:"kingdom_id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
}

// NewBoardCreated creates a BoardCreated event
func NewBoardCreated(boardID, kingdomID, userID, name string, timestamp time.Time) BoardCreated {
	return BoardCreated{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   TypeBoardCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID:   boardID,
		KingdomID: kingdomID,
		UserID:    userID,
		Name:      name,
	}
}

// BoardUpdated is raised when board metadata changes
type BoardUpdated struct {
	BaseEvent
	BoardID string `json:"board_id"`
}

// NewBoardUpdated creates a BoardUpdated event
func NewBoardUpdated(boardID string, timestamp time.Time) BoardUpdated {
	return BoardUpdated{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   TypeBoardUpdated,
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID: boardID,
	}
}

// BoardDeleted is raised when a board is deleted
type BoardDeleted struct {
	BaseEvent
	BoardID string `json:"board_id"`
}

// NewBoardDeleted creates a BoardDeleted event
func NewBoardDeleted(boardID string, timestamp time.Time) BoardDeleted {
	return BoardDeleted{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   TypeBoardDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID: boardID,
	}
}

// User Events

// UserCreated is raised when a user picks a name and avatar
type UserCreated struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	AvatarID string `json:"avatar_id"`
}

// NewUserCreated creates a UserCreated event
func NewUserCreated(userID, name, avatarID string, timestamp time.Time) UserCreated {
	return UserCreated{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   TypeUserCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID:   userID,
		Name:     name,
		AvatarID: avatarID,
	}
}

// UserDeleted is raised when a user is removed
type UserDeleted struct {
	BaseEvent
	UserID string `json:"user_id"`
}

// NewUserDeleted creates a UserDeleted event
func NewUserDeleted(userID string, timestamp time.Time) UserDeleted {
	return UserDeleted{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   TypeUserDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID: userID,
	}
}

// Image Events

// ImageStored is raised when an uploaded image is accepted by the store
type ImageStored struct {
	BaseEvent
	BoardID string `json:"board_id"`
	ImageID string `json:"image_id"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
}

// NewImageStored creates an ImageStored event
func NewImageStored(boardID, imageID, name string, size int64, timestamp time.Time) ImageStored {
	return ImageStored{
		BaseEvent: BaseEvent{
			AggregateID: boardID,
			EventType:   TypeImageStored,
			Timestamp:   timestamp,
			Version:     1,
		},
		BoardID: boardID,
		ImageID: imageID,
		Name:    name,
		Size:    size,
	}
}
