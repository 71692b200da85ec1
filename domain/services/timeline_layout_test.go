package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varangian-core/magical-board/domain/config"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
)

func emptyTimeline(template entities.TimelineTemplate) entities.TimelineContent {
	return entities.NewTimelineContent(template, nil, nil)
}

func TestTimelineLayout_VerticalScenario(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)

	tl, a := svc.AddTimeNode(tl, NodeDraft{})
	assert.Equal(t, 80.0, a.X)
	assert.Equal(t, 80.0, a.Y)
	assert.True(t, svc.BoundingSize(tl).Equals(valueobjects.NewSize(600, 400)))

	tl, b := svc.AddTimeNode(tl, NodeDraft{})
	assert.Equal(t, 80.0, b.X)
	assert.Equal(t, 180.0, b.Y)
	first, _ := tl.Node(a.ID)
	assert.True(t, first.ConnectsTo(b.ID))

	tl, m := svc.AddMilestone(tl, NodeDraft{})
	assert.Equal(t, 160.0, m.X)
	assert.Equal(t, 180.0, m.Y)
	assert.Equal(t, entities.NodeTypeMilestone, m.Type)
	assert.Empty(t, m.Connections)
	assert.Nil(t, m.SnapTo)

	for _, n := range tl.Nodes {
		assert.False(t, n.ConnectsTo(m.ID), "milestones are never auto-connected")
	}
}

func TestTimelineLayout_NodeDefaults(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl.UserColor = "#DDA0DD"

	_, timeNode := svc.AddTimeNode(tl, NodeDraft{})
	assert.Equal(t, "New Event", timeNode.Title)
	assert.Equal(t, "Date", timeNode.Date)
	assert.Equal(t, "⭐", timeNode.Icon)
	assert.Equal(t, "#DDA0DD", timeNode.Color)

	_, milestone := svc.AddMilestone(tl, NodeDraft{Title: "Launch"})
	assert.Equal(t, "Launch", milestone.Title)
	assert.Equal(t, "🏁", milestone.Icon)
	assert.Equal(t, 160.0, milestone.X)
	assert.Equal(t, 80.0, milestone.Y)
}

func TestTimelineLayout_Placement(t *testing.T) {
	type point struct{ x, y float64 }

	tests := []struct {
		name     string
		template entities.TimelineTemplate
		want     []point
	}{
		{
			name:     "vertical",
			template: entities.VerticalTemplate,
			want:     []point{{80, 80}, {80, 180}, {80, 280}},
		},
		{
			name:     "horizontal",
			template: entities.HorizontalTemplate,
			want:     []point{{80, 80}, {230, 80}, {380, 80}},
		},
		{
			name:     "branching",
			template: entities.BranchingTemplate,
			want:     []point{{80, 80}, {-20, 180}, {180, 180}, {-120, 280}, {80, 280}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewTimelineLayoutService(nil)
			tl := emptyTimeline(tt.template)
			for i, want := range tt.want {
				var node entities.TimelineNode
				tl, node = svc.AddTimeNode(tl, NodeDraft{})
				assert.Equal(t, want.x, node.X, "node %d x", i)
				assert.Equal(t, want.y, node.Y, "node %d y", i)
			}
		})
	}
}

func TestTimelineLayout_AutoConnect(t *testing.T) {
	svc := NewTimelineLayoutService(nil)

	horizontal := emptyTimeline(entities.HorizontalTemplate)
	horizontal, a := svc.AddTimeNode(horizontal, NodeDraft{})
	horizontal, _ = svc.AddMilestone(horizontal, NodeDraft{})
	horizontal, b := svc.AddTimeNode(horizontal, NodeDraft{})
	first, _ := horizontal.Node(a.ID)
	assert.Equal(t, []valueobjects.NodeID{b.ID}, first.Connections)

	branching := emptyTimeline(entities.BranchingTemplate)
	branching, root := svc.AddTimeNode(branching, NodeDraft{})
	branching, _ = svc.AddTimeNode(branching, NodeDraft{})
	rootNode, _ := branching.Node(root.ID)
	assert.Empty(t, rootNode.Connections)
}

func TestTimelineLayout_MilestoneAnchorsOnLastTimeNode(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.HorizontalTemplate)
	tl, _ = svc.AddTimeNode(tl, NodeDraft{})
	tl, _ = svc.AddTimeNode(tl, NodeDraft{})
	tl, m1 := svc.AddMilestone(tl, NodeDraft{})
	_, m2 := svc.AddMilestone(tl, NodeDraft{})

	assert.Equal(t, 230.0, m1.X)
	assert.Equal(t, 140.0, m1.Y)
	assert.Equal(t, m1.X, m2.X)
	assert.Equal(t, m1.Y, m2.Y)
}

func TestTimelineLayout_InputNotMutated(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl, a := svc.AddTimeNode(tl, NodeDraft{})

	_, _ = svc.AddTimeNode(tl, NodeDraft{})
	require.Len(t, tl.Nodes, 1)
	assert.Empty(t, tl.Nodes[0].Connections)

	_, moved := svc.MoveNode(tl, a.ID, 500, 500)
	require.True(t, moved)
	assert.Equal(t, 80.0, tl.Nodes[0].X)
}

func TestTimelineLayout_MilestoneSnap(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl, a := svc.AddTimeNode(tl, NodeDraft{})
	tl, b := svc.AddTimeNode(tl, NodeDraft{})
	tl, m := svc.AddMilestone(tl, NodeDraft{})

	tests := []struct {
		name   string
		x, y   float64
		wantID *valueobjects.NodeID
	}{
		{"within radius of B", 110, 180, &b.ID},
		{"exactly at radius of A", 130, 80, &a.ID},
		{"nearest wins", 80, 140, &b.ID},
		{"out of range", 200, 300, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := svc.MoveNode(tl, m.ID, tt.x, tt.y)
			require.True(t, ok)
			node, _ := out.Node(m.ID)
			if tt.wantID == nil {
				assert.Nil(t, node.SnapTo)
				return
			}
			require.NotNil(t, node.SnapTo)
			assert.True(t, node.SnapTo.Equals(*tt.wantID))
		})
	}
}

func TestTimelineLayout_MilestoneSnapClearedWhenMovedAway(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl, a := svc.AddTimeNode(tl, NodeDraft{})
	tl, m := svc.AddMilestone(tl, NodeDraft{})

	tl, _ = svc.MoveNode(tl, m.ID, 100, 80)
	snapped, _ := tl.Node(m.ID)
	require.NotNil(t, snapped.SnapTo)

	tl, _ = svc.MoveNode(tl, m.ID, 400, 400)
	released, _ := tl.Node(m.ID)
	assert.Nil(t, released.SnapTo)

	tl, _ = svc.MoveNode(tl, m.ID, 100, 80)
	tl, _ = svc.MoveNode(tl, a.ID, 80, 300)
	afterTimeDrag, _ := tl.Node(m.ID)
	assert.Nil(t, afterTimeDrag.SnapTo, "a time-node drag recomputes milestone snaps")
}

func TestTimelineLayout_TimeNodeDragRetargetsSnap(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl, a := svc.AddTimeNode(tl, NodeDraft{})
	tl, b := svc.AddTimeNode(tl, NodeDraft{})
	tl, m := svc.AddMilestone(tl, NodeDraft{})

	// M sits 30 from A and far from B
	tl, _ = svc.MoveNode(tl, m.ID, 110, 80)
	node, _ := tl.Node(m.ID)
	require.NotNil(t, node.SnapTo)
	require.True(t, node.SnapTo.Equals(a.ID))

	tl, _ = svc.MoveNode(tl, b.ID, 110, 80)
	node, _ = tl.Node(m.ID)
	require.NotNil(t, node.SnapTo)
	assert.True(t, node.SnapTo.Equals(b.ID), "the dragged time-node is now nearest")

	dragged, _ := tl.Node(b.ID)
	assert.Nil(t, dragged.SnapTo)
}

func TestTimelineLayout_TimeNodeDragSnapsUnsnappedMilestone(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl, a := svc.AddTimeNode(tl, NodeDraft{})
	tl, m := svc.AddMilestone(tl, NodeDraft{})

	node, _ := tl.Node(m.ID)
	require.Nil(t, node.SnapTo)

	tl, _ = svc.MoveNode(tl, a.ID, m.X, m.Y)
	node, _ = tl.Node(m.ID)
	require.NotNil(t, node.SnapTo)
	assert.True(t, node.SnapTo.Equals(a.ID))

	timeNode, _ := tl.Node(a.ID)
	assert.Nil(t, timeNode.SnapTo)
}

func TestTimelineLayout_MoveUnknownNode(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl, _ = svc.AddTimeNode(tl, NodeDraft{})

	out, ok := svc.MoveNode(tl, valueobjects.NewNodeID(), 1, 1)
	assert.False(t, ok)
	assert.Equal(t, tl, out)
}

func TestTimelineLayout_Connect(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.BranchingTemplate)
	tl, a := svc.AddTimeNode(tl, NodeDraft{})
	tl, b := svc.AddTimeNode(tl, NodeDraft{})
	tl, m := svc.AddMilestone(tl, NodeDraft{})

	tests := []struct {
		name     string
		from, to valueobjects.NodeID
		wantOK   bool
	}{
		{"time to time", a.ID, b.ID, true},
		{"time to milestone", b.ID, m.ID, true},
		{"from milestone", m.ID, a.ID, false},
		{"self connection", a.ID, a.ID, false},
		{"unknown target", a.ID, valueobjects.NewNodeID(), false},
		{"unknown source", valueobjects.NewNodeID(), a.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := svc.Connect(tl, tt.from, tt.to)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, tl, out)
				return
			}
			src, _ := out.Node(tt.from)
			assert.True(t, src.ConnectsTo(tt.to))
		})
	}
}

func TestTimelineLayout_ConnectDuplicates(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl, a := svc.AddTimeNode(tl, NodeDraft{})
	tl, b := svc.AddTimeNode(tl, NodeDraft{})

	_, ok := svc.Connect(tl, a.ID, b.ID)
	assert.False(t, ok, "auto-connected pair is already present")

	cfg := config.DefaultDomainConfig()
	cfg.AllowDuplicateConnections = true
	cfg.AllowSelfConnections = true
	lenient := NewTimelineLayoutService(cfg)

	out, ok := lenient.Connect(tl, a.ID, b.ID)
	require.True(t, ok)
	src, _ := out.Node(a.ID)
	assert.Len(t, src.Connections, 2)

	_, ok = lenient.Connect(tl, a.ID, a.ID)
	assert.True(t, ok)
}

func TestTimelineLayout_RemoveNode(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl, a := svc.AddTimeNode(tl, NodeDraft{})
	tl, b := svc.AddTimeNode(tl, NodeDraft{})
	tl, m := svc.AddMilestone(tl, NodeDraft{})
	tl, _ = svc.MoveNode(tl, m.ID, 90, 190)

	out, ok := svc.RemoveNode(tl, b.ID)
	require.True(t, ok)
	require.Len(t, out.Nodes, 2)

	first, _ := out.Node(a.ID)
	assert.Empty(t, first.Connections)
	milestone, _ := out.Node(m.ID)
	assert.Nil(t, milestone.SnapTo)

	require.Len(t, tl.Nodes, 3)
	_, ok = svc.RemoveNode(tl, valueobjects.NewNodeID())
	assert.False(t, ok)
}

func TestTimelineLayout_BoundingSize(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	id := valueobjects.NewNodeID()

	tests := []struct {
		name  string
		nodes []entities.TimelineNode
		want  valueobjects.Size
	}{
		{"empty", nil, valueobjects.NewSize(600, 400)},
		{"single node at origin", []entities.TimelineNode{{ID: id, X: 80, Y: 80, Type: entities.NodeTypeTime}}, valueobjects.NewSize(600, 400)},
		{"far time node", []entities.TimelineNode{{ID: id, X: 700, Y: 500, Type: entities.NodeTypeTime}}, valueobjects.NewSize(860, 670)},
		{"far milestone", []entities.TimelineNode{{ID: id, X: 700, Y: 500, Type: entities.NodeTypeMilestone}}, valueobjects.NewSize(825, 665)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.BoundingSize(entities.TimelineContent{Nodes: tt.nodes})
			assert.Equal(t, tt.want.Width(), got.Width())
			assert.Equal(t, tt.want.Height(), got.Height())
			assert.GreaterOrEqual(t, got.Width(), 600.0)
			assert.GreaterOrEqual(t, got.Height(), 400.0)
		})
	}
}

func TestTimelineLayout_Connections(t *testing.T) {
	svc := NewTimelineLayoutService(nil)
	tl := emptyTimeline(entities.VerticalTemplate)
	tl, a := svc.AddTimeNode(tl, NodeDraft{})
	tl, b := svc.AddTimeNode(tl, NodeDraft{})
	tl, c := svc.AddTimeNode(tl, NodeDraft{})

	conns := svc.Connections(tl)
	require.Len(t, conns, 2)
	assert.Equal(t, a.ID, conns[0].From.ID)
	assert.Equal(t, b.ID, conns[0].To.ID)
	assert.Equal(t, b.ID, conns[1].From.ID)
	assert.Equal(t, c.ID, conns[1].To.ID)

	assert.Empty(t, svc.Connections(emptyTimeline(entities.VerticalTemplate)))
}
