package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	"github.com/varangian-core/magical-board/domain/events"
)

func newState(t *testing.T) *BoardState {
	t.Helper()
	s, err := NewBoardState("board-1", nil)
	require.NoError(t, err)
	return s
}

func TestNewBoardState_RequiresBoardID(t *testing.T) {
	_, err := NewBoardState("", nil)
	assert.Error(t, err)
}

func TestAddElement_SizeFloorAndZIndex(t *testing.T) {
	s := newState(t)
	tiny := valueobjects.NewSize(1, 1)

	drafts := []entities.ElementDraft{
		{},
		{Size: &tiny},
		{Type: entities.ElementTypeTimeline},
		{Content: entities.ImageContent{Name: "a.png"}},
	}
	for i, draft := range drafts {
		before := s.Len()
		el := s.AddElement(draft)
		assert.Equal(t, before, el.ZIndex(), "draft %d", i)
		assert.GreaterOrEqual(t, el.Size().Width(), 50.0)
		assert.GreaterOrEqual(t, el.Size().Height(), 50.0)
	}
	assert.Equal(t, 4, s.Len())
}

func TestAddElement_ZIndexNotRenumbered(t *testing.T) {
	s := newState(t)
	a := s.AddElement(entities.ElementDraft{})
	b := s.AddElement(entities.ElementDraft{})
	require.True(t, s.DeleteElement(a.ID()))

	remaining, ok := s.Element(b.ID())
	require.True(t, ok)
	assert.Equal(t, 1, remaining.ZIndex())

	c := s.AddElement(entities.ElementDraft{})
	assert.Equal(t, 1, c.ZIndex())
}

func TestAddElement_AttributesCurrentUser(t *testing.T) {
	s := newState(t)
	avatar := valueobjects.Avatar{ID: "star", Name: "Star Guardian", Emoji: "⭐", Color: "#DDA0DD"}
	user, err := entities.NewUser("", "Minako", avatar)
	require.NoError(t, err)

	s.SetCurrentUser(user)
	el := s.AddElement(entities.ElementDraft{})
	assert.Equal(t, user.ID(), el.CreatedBy())
	card := el.Content().(entities.CardContent)
	assert.Equal(t, "⭐", card.UserIcon)

	s.SetCurrentUser(nil)
	anon := s.AddElement(entities.ElementDraft{})
	assert.Equal(t, "anonymous", anon.CreatedBy())
}

func TestUpdateElement(t *testing.T) {
	s := newState(t)
	el := s.AddElement(entities.ElementDraft{})

	pos := valueobjects.NewPosition(250, -40)
	size := valueobjects.NewSize(20, 400)
	rot := 30.0
	ok := s.UpdateElement(el.ID(), ElementPatch{
		Position: &pos,
		Size:     &size,
		Rotation: &rot,
		Content:  entities.CardContent{Header: "Replaced"},
	})
	require.True(t, ok)

	updated, _ := s.Element(el.ID())
	assert.True(t, updated.Position().Equals(pos))
	assert.Equal(t, 50.0, updated.Size().Width())
	assert.Equal(t, 400.0, updated.Size().Height())
	assert.Equal(t, 30.0, updated.Rotation())
	assert.Equal(t, entities.CardContent{Header: "Replaced"}, updated.Content())
}

func TestUpdateElement_ContentChangesType(t *testing.T) {
	s := newState(t)
	el := s.AddElement(entities.ElementDraft{})

	require.True(t, s.UpdateElement(el.ID(), ElementPatch{Content: entities.ImageContent{URL: "u"}}))
	updated, _ := s.Element(el.ID())
	assert.Equal(t, entities.ElementTypeImage, updated.Type())
}

func TestUpdateElement_UnknownIDLeavesCollection(t *testing.T) {
	s := newState(t)
	s.AddElement(entities.ElementDraft{})
	s.AddElement(entities.ElementDraft{Type: entities.ElementTypeTimeline})
	before := s.Elements()
	s.MarkEventsAsCommitted()

	pos := valueobjects.NewPosition(1, 1)
	assert.False(t, s.UpdateElement(valueobjects.NewElementID(), ElementPatch{Position: &pos}))
	assert.Equal(t, before, s.Elements())
	assert.Empty(t, s.GetUncommittedEvents())
}

func TestDeleteElement_Selection(t *testing.T) {
	tests := []struct {
		name           string
		deleteSelected bool
		wantSelection  bool
	}{
		{"deleting the selected element clears selection", true, false},
		{"deleting another element keeps selection", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t)
			a := s.AddElement(entities.ElementDraft{})
			b := s.AddElement(entities.ElementDraft{})
			id := a.ID()
			s.SetSelectedElement(&id)

			target := b.ID()
			if tt.deleteSelected {
				target = a.ID()
			}
			require.True(t, s.DeleteElement(target))

			if tt.wantSelection {
				require.NotNil(t, s.SelectedElement())
				assert.True(t, s.SelectedElement().Equals(a.ID()))
			} else {
				assert.Nil(t, s.SelectedElement())
			}
		})
	}
}

func TestDeleteElement_ClearsEditAndPending(t *testing.T) {
	s := newState(t)
	el := s.AddElement(entities.ElementDraft{})
	require.True(t, s.BeginEdit(entities.EditTarget{ElementID: el.ID(), Field: entities.FieldCardText}))
	s.SetPendingConnection(&PendingConnection{ElementID: el.ID(), NodeID: valueobjects.NewNodeID()})

	require.True(t, s.DeleteElement(el.ID()))
	assert.Nil(t, s.Editing())
	assert.Nil(t, s.PendingConnection())
	assert.False(t, s.DeleteElement(el.ID()))
}

func TestEditing_CommitAndCancel(t *testing.T) {
	s := newState(t)
	el := s.AddElement(entities.ElementDraft{Content: entities.CardContent{Header: "Old", Text: "body"}})
	target := entities.EditTarget{ElementID: el.ID(), Field: entities.FieldCardHeader}

	require.True(t, s.BeginEdit(target))
	assert.Equal(t, "Old", s.Editing().PendingValue)
	require.True(t, s.SetPendingValue("New"))
	require.True(t, s.CommitEdit())
	assert.Nil(t, s.Editing())

	updated, _ := s.Element(el.ID())
	assert.Equal(t, "New", updated.Content().(entities.CardContent).Header)
	assert.Equal(t, "body", updated.Content().(entities.CardContent).Text)

	require.True(t, s.BeginEdit(target))
	s.SetPendingValue("Discarded")
	s.CancelEdit()
	updated, _ = s.Element(el.ID())
	assert.Equal(t, "New", updated.Content().(entities.CardContent).Header)

	assert.False(t, s.CommitEdit())
	assert.False(t, s.SetPendingValue("x"))
}

func TestBeginEdit_UnresolvedTarget(t *testing.T) {
	s := newState(t)
	img := s.AddElement(entities.ElementDraft{Content: entities.ImageContent{}})

	assert.False(t, s.BeginEdit(entities.EditTarget{ElementID: valueobjects.NewElementID(), Field: entities.FieldCardText}))
	assert.False(t, s.BeginEdit(entities.EditTarget{ElementID: img.ID(), Field: entities.FieldCardText}))
	assert.Nil(t, s.Editing())
}

func TestEvents(t *testing.T) {
	s := newState(t)
	el := s.AddElement(entities.ElementDraft{})
	pos := valueobjects.NewPosition(5, 5)
	s.UpdateElement(el.ID(), ElementPatch{Position: &pos})
	s.DeleteElement(el.ID())

	evts := s.GetUncommittedEvents()
	require.Len(t, evts, 3)
	assert.Equal(t, events.TypeElementAdded, evts[0].GetEventType())
	assert.Equal(t, events.TypeElementUpdated, evts[1].GetEventType())
	assert.Equal(t, []string{"position"}, evts[1].(events.ElementUpdated).Fields)
	assert.Equal(t, events.TypeElementDeleted, evts[2].GetEventType())
	assert.Equal(t, "board-1", evts[0].GetAggregateID())

	s.MarkEventsAsCommitted()
	assert.Empty(t, s.GetUncommittedEvents())
}

func TestRestoreBoardState_OrdersByZIndex(t *testing.T) {
	mk := func(z int) *entities.BoardElement {
		el, err := entities.ReconstructElement(valueobjects.NewElementID(), valueobjects.NewPosition(0, 0),
			valueobjects.NewSize(100, 100), 0, z, entities.CardContent{}, "u", nil)
		require.NoError(t, err)
		return el
	}
	s, err := RestoreBoardState("board-1", nil, []*entities.BoardElement{mk(4), mk(0), mk(2)})
	require.NoError(t, err)

	els := s.Elements()
	require.Len(t, els, 3)
	assert.Equal(t, []int{0, 2, 4}, []int{els[0].ZIndex(), els[1].ZIndex(), els[2].ZIndex()})
	assert.Empty(t, s.GetUncommittedEvents())

	next := s.AddElement(entities.ElementDraft{})
	assert.Equal(t, 3, next.ZIndex())
}
