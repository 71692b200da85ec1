package aggregates

import (
	"errors"
	"sort"
	"time"

	"github.com/varangian-core/magical-board/domain/config"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	"github.com/varangian-core/magical-board/domain/events"
)

// ElementPatch is a shallow update. Nil fields are left unchanged and a
// non-nil Content replaces the element content wholesale.
type ElementPatch struct {
	Position *valueobjects.Position
	Size     *valueobjects.Size
	Rotation *float64
	ZIndex   *int
	Content  entities.Content
	LockedBy *string
}

// IsEmpty reports whether the patch changes nothing
func (p ElementPatch) IsEmpty() bool {
	return p.Position == nil && p.Size == nil && p.Rotation == nil &&
		p.ZIndex == nil && p.Content == nil && p.LockedBy == nil
}

// PendingConnection is the source node chosen by the first click of a
// two-click connect gesture
type PendingConnection struct {
	ElementID valueobjects.ElementID
	NodeID    valueobjects.NodeID
}

// BoardState is the aggregate root for one open board. It owns the
// element collection along with selection, the current user, the inline
// edit in progress and the pending connection source.
//
// BoardState is not safe for concurrent use.
type BoardState struct {
	boardID     string
	config      *config.DomainConfig
	elements    []*entities.BoardElement
	selected    *valueobjects.ElementID
	currentUser *entities.User
	editing     *entities.EditingState
	pending     *PendingConnection
	events      []events.DomainEvent
}

// NewBoardState creates an empty store for a board
func NewBoardState(boardID string, cfg *config.DomainConfig) (*BoardState, error) {
	if boardID == "" {
		return nil, errors.New("boardID required")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &BoardState{
		boardID:  boardID,
		config:   cfg,
		elements: []*entities.BoardElement{},
		events:   []events.DomainEvent{},
	}, nil
}

// RestoreBoardState rebuilds a store from persisted elements. Elements
// are ordered by zIndex and no events are raised.
func RestoreBoardState(boardID string, cfg *config.DomainConfig, elements []*entities.BoardElement) (*BoardState, error) {
	state, err := NewBoardState(boardID, cfg)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		if el != nil {
			state.elements = append(state.elements, el.Clone())
		}
	}
	sort.SliceStable(state.elements, func(i, j int) bool {
		return state.elements[i].ZIndex() < state.elements[j].ZIndex()
	})
	return state, nil
}

// BoardID returns the id of the board this store belongs to
func (s *BoardState) BoardID() string {
	return s.boardID
}

// Config returns the domain rules in effect
func (s *BoardState) Config() *config.DomainConfig {
	return s.config
}

// AddElement completes the draft with defaults, appends it and returns a
// copy of the stored element
func (s *BoardState) AddElement(draft entities.ElementDraft) *entities.BoardElement {
	el := entities.NewBoardElement(draft, entities.ElementDefaults{
		Config: s.config,
		User:   s.currentUser,
		ZIndex: len(s.elements),
	})
	s.elements = append(s.elements, el)

	s.addEvent(events.NewElementAdded(s.boardID, el.ID(), string(el.Type()), el.ZIndex(), el.CreatedBy(), time.Now()))
	return el.Clone()
}

// UpdateElement merges the patch into the element with the given id.
// Unknown ids are ignored and report false.
func (s *BoardState) UpdateElement(id valueobjects.ElementID, patch ElementPatch) bool {
	el := s.find(id)
	if el == nil {
		return false
	}
	if patch.IsEmpty() {
		return true
	}

	var fields []string
	if patch.Position != nil {
		el.MoveTo(*patch.Position)
		fields = append(fields, "position")
	}
	if patch.Size != nil {
		el.Resize(*patch.Size)
		fields = append(fields, "size")
	}
	if patch.Rotation != nil {
		el.Rotate(*patch.Rotation)
		fields = append(fields, "rotation")
	}
	if patch.ZIndex != nil {
		el.SetZIndex(*patch.ZIndex)
		fields = append(fields, "zIndex")
	}
	if patch.Content != nil {
		el.ReplaceContent(patch.Content)
		fields = append(fields, "content")
	}
	if patch.LockedBy != nil {
		lockedBy := *patch.LockedBy
		el.SetLockedBy(&lockedBy)
		fields = append(fields, "lockedBy")
	}

	s.addEvent(events.NewElementUpdated(s.boardID, id, string(el.Type()), fields, time.Now()))
	return true
}

// DeleteElement removes the element. A selection, edit or pending
// connection that references it is cleared.
func (s *BoardState) DeleteElement(id valueobjects.ElementID) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	el := s.elements[idx]
	s.elements = append(s.elements[:idx], s.elements[idx+1:]...)

	if s.selected != nil && s.selected.Equals(id) {
		s.selected = nil
	}
	if s.editing != nil && s.editing.Target.ElementID.Equals(id) {
		s.editing = nil
	}
	if s.pending != nil && s.pending.ElementID.Equals(id) {
		s.pending = nil
	}

	s.addEvent(events.NewElementDeleted(s.boardID, id, string(el.Type()), time.Now()))
	return true
}

// SetSelectedElement selects an element by id, or clears the selection
// when id is nil. The id is not checked against the collection.
func (s *BoardState) SetSelectedElement(id *valueobjects.ElementID) {
	if id == nil {
		s.selected = nil
		return
	}
	selected := *id
	s.selected = &selected
}

// SetCurrentUser sets the user new elements are attributed to
func (s *BoardState) SetCurrentUser(user *entities.User) {
	s.currentUser = user
}

// BeginEdit opens an inline edit seeded with the field's current text.
// An edit already in progress is replaced.
func (s *BoardState) BeginEdit(target entities.EditTarget) bool {
	el := s.find(target.ElementID)
	if el == nil {
		return false
	}
	value, ok := entities.ReadField(el.Content(), target)
	if !ok {
		return false
	}
	s.editing = &entities.EditingState{Target: copyTarget(target), PendingValue: value}
	return true
}

// SetPendingValue records typed text for the edit in progress
func (s *BoardState) SetPendingValue(value string) bool {
	if s.editing == nil {
		return false
	}
	s.editing.PendingValue = value
	return true
}

// CommitEdit writes the pending text into the element and closes the edit
func (s *BoardState) CommitEdit() bool {
	if s.editing == nil {
		return false
	}
	editing := *s.editing
	s.editing = nil

	el := s.find(editing.Target.ElementID)
	if el == nil {
		return false
	}
	content, ok := entities.WriteField(el.Content(), editing.Target, editing.PendingValue)
	if !ok {
		return false
	}
	return s.UpdateElement(editing.Target.ElementID, ElementPatch{Content: content})
}

// CancelEdit closes the edit without writing
func (s *BoardState) CancelEdit() {
	s.editing = nil
}

// SetPendingConnection records the source of a connect gesture
func (s *BoardState) SetPendingConnection(p *PendingConnection) {
	if p == nil {
		s.pending = nil
		return
	}
	pending := *p
	s.pending = &pending
}

// Read accessors

// Elements returns copies of all elements in insertion order
func (s *BoardState) Elements() []*entities.BoardElement {
	out := make([]*entities.BoardElement, len(s.elements))
	for i, el := range s.elements {
		out[i] = el.Clone()
	}
	return out
}

// Element returns a copy of the element with the given id
func (s *BoardState) Element(id valueobjects.ElementID) (*entities.BoardElement, bool) {
	el := s.find(id)
	if el == nil {
		return nil, false
	}
	return el.Clone(), true
}

// Len returns the number of elements
func (s *BoardState) Len() int {
	return len(s.elements)
}

// SelectedElement returns the selected id, if any
func (s *BoardState) SelectedElement() *valueobjects.ElementID {
	if s.selected == nil {
		return nil
	}
	id := *s.selected
	return &id
}

// CurrentUser returns the active user, if any
func (s *BoardState) CurrentUser() *entities.User {
	return s.currentUser
}

// Editing returns the edit in progress, if any
func (s *BoardState) Editing() *entities.EditingState {
	if s.editing == nil {
		return nil
	}
	editing := *s.editing
	editing.Target = copyTarget(editing.Target)
	return &editing
}

// PendingConnection returns the pending connect source, if any
func (s *BoardState) PendingConnection() *PendingConnection {
	if s.pending == nil {
		return nil
	}
	p := *s.pending
	return &p
}

// Events

// GetUncommittedEvents returns events raised since the last commit
func (s *BoardState) GetUncommittedEvents() []events.DomainEvent {
	return s.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (s *BoardState) MarkEventsAsCommitted() {
	s.events = []events.DomainEvent{}
}

func (s *BoardState) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}

func (s *BoardState) find(id valueobjects.ElementID) *entities.BoardElement {
	if idx := s.indexOf(id); idx >= 0 {
		return s.elements[idx]
	}
	return nil
}

func (s *BoardState) indexOf(id valueobjects.ElementID) int {
	for i, el := range s.elements {
		if el.ID().Equals(id) {
			return i
		}
	}
	return -1
}

func copyTarget(t entities.EditTarget) entities.EditTarget {
	if t.NodeID != nil {
		nodeID := *t.NodeID
		t.NodeID = &nodeID
	}
	return t
}
