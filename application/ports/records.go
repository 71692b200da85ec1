package ports

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
)

// ElementRecord is the storage shape of a board element. Position and
// size are flattened and content is JSON tagged by Type.
type ElementRecord struct {
	ID        string          `json:"id"`
	BoardID   string          `json:"boardId"`
	Type      string          `json:"type"`
	PositionX float64         `json:"positionX"`
	PositionY float64         `json:"positionY"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Rotation  float64         `json:"rotation"`
	ZIndex    int             `json:"zIndex"`
	Content   json.RawMessage `json:"content"`
	CreatedBy string          `json:"createdBy"`
	LockedBy  *string         `json:"lockedBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ElementRecordPatch is a partial record update. Nil fields are unchanged.
type ElementRecordPatch struct {
	Type      *string
	PositionX *float64
	PositionY *float64
	Width     *float64
	Height    *float64
	Rotation  *float64
	ZIndex    *int
	Content   json.RawMessage
	LockedBy  *string
}

// NewElementRecord flattens an element for storage
func NewElementRecord(boardID string, el *entities.BoardElement) (ElementRecord, error) {
	content, err := entities.MarshalContent(el.Content())
	if err != nil {
		return ElementRecord{}, fmt.Errorf("encode element %s: %w", el.ID(), err)
	}

	now := time.Now().UTC()
	return ElementRecord{
		ID:        el.ID().String(),
		BoardID:   boardID,
		Type:      string(el.Type()),
		PositionX: el.Position().X(),
		PositionY: el.Position().Y(),
		Width:     el.Size().Width(),
		Height:    el.Size().Height(),
		Rotation:  el.Rotation(),
		ZIndex:    el.ZIndex(),
		Content:   content,
		CreatedBy: el.CreatedBy(),
		LockedBy:  el.LockedBy(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FullPatch returns a patch that overwrites every mutable field of the
// record with the element's current state
func FullPatch(el *entities.BoardElement) (ElementRecordPatch, error) {
	content, err := entities.MarshalContent(el.Content())
	if err != nil {
		return ElementRecordPatch{}, fmt.Errorf("encode element %s: %w", el.ID(), err)
	}

	elementType := string(el.Type())
	x, y := el.Position().X(), el.Position().Y()
	w, h := el.Size().Width(), el.Size().Height()
	rotation := el.Rotation()
	zIndex := el.ZIndex()
	return ElementRecordPatch{
		Type:      &elementType,
		PositionX: &x,
		PositionY: &y,
		Width:     &w,
		Height:    &h,
		Rotation:  &rotation,
		ZIndex:    &zIndex,
		Content:   content,
		LockedBy:  el.LockedBy(),
	}, nil
}

// Apply merges a patch into the record and touches UpdatedAt
func (r *ElementRecord) Apply(patch ElementRecordPatch) {
	if patch.Type != nil {
		r.Type = *patch.Type
	}
	if patch.PositionX != nil {
		r.PositionX = *patch.PositionX
	}
	if patch.PositionY != nil {
		r.PositionY = *patch.PositionY
	}
	if patch.Width != nil {
		r.Width = *patch.Width
	}
	if patch.Height != nil {
		r.Height = *patch.Height
	}
	if patch.Rotation != nil {
		r.Rotation = *patch.Rotation
	}
	if patch.ZIndex != nil {
		r.ZIndex = *patch.ZIndex
	}
	if patch.Content != nil {
		r.Content = append(json.RawMessage(nil), patch.Content...)
	}
	if patch.LockedBy != nil {
		lockedBy := *patch.LockedBy
		r.LockedBy = &lockedBy
	}
	r.UpdatedAt = time.Now().UTC()
}

// ToElement rebuilds the domain element from the record
func (r ElementRecord) ToElement() (*entities.BoardElement, error) {
	id, err := valueobjects.ElementIDFrom(r.ID)
	if err != nil {
		return nil, err
	}
	content, err := entities.UnmarshalContent(entities.ElementType(r.Type), r.Content)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", r.ID, err)
	}
	return entities.ReconstructElement(
		id,
		valueobjects.NewPosition(r.PositionX, r.PositionY),
		valueobjects.NewSize(r.Width, r.Height),
		r.Rotation,
		r.ZIndex,
		content,
		r.CreatedBy,
		r.LockedBy,
	)
}

// ToElements converts records, failing on the first bad record
func ToElements(records []ElementRecord) ([]*entities.BoardElement, error) {
	out := make([]*entities.BoardElement, 0, len(records))
	for _, r := range records {
		el, err := r.ToElement()
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}
