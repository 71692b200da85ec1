package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// Board is a named canvas grouped under a kingdom
type Board struct {
	id          string
	name        string
	description *string
	kingdomID   string
	createdBy   string
	createdAt   time.Time
	updatedAt   time.Time
}

// BoardPatch carries a partial board update. Nil fields are left alone.
type BoardPatch struct {
	Name        *string
	Description *string
	KingdomID   *string
}

// IsEmpty reports whether the patch changes nothing
func (p BoardPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.KingdomID == nil
}

// NewBoard creates a board owned by userID. An empty id is generated.
func NewBoard(id, name, kingdomID, userID string, description *string) (*Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("name is required")
	}
	if kingdomID == "" {
		return nil, pkgerrors.NewValidationError("kingdomId is required")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userId is required")
	}

	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now().UTC()
	return &Board{
		id:          id,
		name:        name,
		description: description,
		kingdomID:   kingdomID,
		createdBy:   userID,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructBoard rebuilds a board from stored data
func ReconstructBoard(id, name string, description *string, kingdomID, createdBy string, createdAt, updatedAt time.Time) (*Board, error) {
	if id == "" || name == "" || kingdomID == "" {
		return nil, pkgerrors.NewValidationError("required fields missing for board reconstruction")
	}
	return &Board{
		id:          id,
		name:        name,
		description: description,
		kingdomID:   kingdomID,
		createdBy:   createdBy,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (b *Board) ID() string           { return b.id }
func (b *Board) Name() string         { return b.name }
func (b *Board) Description() *string { return b.description }
func (b *Board) KingdomID() string    { return b.kingdomID }
func (b *Board) CreatedBy() string    { return b.createdBy }
func (b *Board) CreatedAt() time.Time { return b.createdAt }
func (b *Board) UpdatedAt() time.Time { return b.updatedAt }

// Apply merges a patch into the board and bumps updatedAt
func (b *Board) Apply(patch BoardPatch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return pkgerrors.NewValidationError("name cannot be empty")
		}
		b.name = name
	}
	if patch.Description != nil {
		desc := *patch.Description
		b.description = &desc
	}
	if patch.KingdomID != nil {
		if *patch.KingdomID == "" {
			return pkgerrors.NewValidationError("kingdomId cannot be empty")
		}
		b.kingdomID = *patch.KingdomID
	}
	b.updatedAt = time.Now().UTC()
	return nil
}
