package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// User is a person identified by a display name and a chosen avatar
type User struct {
	id         string
	name       string
	avatar     valueobjects.Avatar
	createdAt  time.Time
	lastActive time.Time
}

// NewUser creates a user. An empty id is generated.
func NewUser(id, name string, avatar valueobjects.Avatar) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("name is required")
	}
	if avatar.IsZero() {
		return nil, pkgerrors.NewValidationError("avatar is required")
	}

	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now().UTC()
	return &User{
		id:         id,
		name:       name,
		avatar:     avatar,
		createdAt:  now,
		lastActive: now,
	}, nil
}

// ReconstructUser rebuilds a user from stored data
func ReconstructUser(id, name string, avatar valueobjects.Avatar, createdAt, lastActive time.Time) (*User, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("user id cannot be empty")
	}
	return &User{
		id:         id,
		name:       name,
		avatar:     avatar,
		createdAt:  createdAt,
		lastActive: lastActive,
	}, nil
}

// ID returns the user's id
func (u *User) ID() string { return u.id }

// Name returns the display name
func (u *User) Name() string { return u.name }

// Avatar returns the chosen avatar
func (u *User) Avatar() valueobjects.Avatar { return u.avatar }

// CreatedAt returns when the user was created
func (u *User) CreatedAt() time.Time { return u.createdAt }

// LastActive returns when the user was last selected
func (u *User) LastActive() time.Time { return u.lastActive }

// Touch marks the user as active now
func (u *User) Touch() {
	u.lastActive = time.Now().UTC()
}
