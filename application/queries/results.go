package queries

import (
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	"github.com/varangian-core/magical-board/pkg/utils"
)

// UserResult is the read model of a user
type UserResult struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Avatar     valueobjects.Avatar `json:"avatar"`
	CreatedAt  string              `json:"createdAt"`
	LastActive string              `json:"lastActive"`
}

// NewUserResult converts a user entity
func NewUserResult(u *entities.User) UserResult {
	return UserResult{
		ID:         u.ID(),
		Name:       u.Name(),
		Avatar:     u.Avatar(),
		CreatedAt:  utils.FormatTime(u.CreatedAt()),
		LastActive: utils.FormatTime(u.LastActive()),
	}
}

// BoardResult is the read model of a board
type BoardResult struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	KingdomID   string  `json:"kingdomId"`
	CreatedBy   string  `json:"createdBy"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// NewBoardResult converts a board entity
func NewBoardResult(b *entities.Board) BoardResult {
	return BoardResult{
		ID:          b.ID(),
		Name:        b.Name(),
		Description: b.Description(),
		KingdomID:   b.KingdomID(),
		CreatedBy:   b.CreatedBy(),
		CreatedAt:   utils.FormatTime(b.CreatedAt()),
		UpdatedAt:   utils.FormatTime(b.UpdatedAt()),
	}
}

// BoardDetailResult is a board with its elements in zIndex order
type BoardDetailResult struct {
	BoardResult
	Elements []ElementResult `json:"elements"`
}

// ElementResult is the read model of a board element
type ElementResult struct {
	ID        string                `json:"id"`
	Type      entities.ElementType  `json:"type"`
	Position  valueobjects.Position `json:"position"`
	Size      valueobjects.Size     `json:"size"`
	Rotation  float64               `json:"rotation"`
	ZIndex    int                   `json:"zIndex"`
	Content   entities.Content      `json:"content"`
	CreatedBy string                `json:"createdBy"`
	LockedBy  *string               `json:"lockedBy,omitempty"`
}

// NewElementResult converts a board element
func NewElementResult(el *entities.BoardElement) ElementResult {
	return ElementResult{
		ID:        el.ID().String(),
		Type:      el.Type(),
		Position:  el.Position(),
		Size:      el.Size(),
		Rotation:  el.Rotation(),
		ZIndex:    el.ZIndex(),
		Content:   el.Content(),
		CreatedBy: el.CreatedBy(),
		LockedBy:  el.LockedBy(),
	}
}

// NewElementResults converts elements preserving order
func NewElementResults(elements []*entities.BoardElement) []ElementResult {
	out := make([]ElementResult, len(elements))
	for i, el := range elements {
		out[i] = NewElementResult(el)
	}
	return out
}
