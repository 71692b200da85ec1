package services

import (
	"math"

	"github.com/varangian-core/magical-board/domain/config"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
)

const (
	defaultTimeNodeTitle      = "New Event"
	defaultMilestoneNodeTitle = "Milestone"
	defaultNodeDate           = "Date"
	defaultTimeNodeIcon       = "⭐"
	defaultMilestoneNodeIcon  = "🏁"
)

// NodeDraft carries optional caller-supplied node text. Empty fields get
// the defaults for the node type.
type NodeDraft struct {
	Title string
	Date  string
	Icon  string
	Color string
}

// Connection is a directed edge resolved to its endpoint nodes
type Connection struct {
	From entities.TimelineNode `json:"from"`
	To   entities.TimelineNode `json:"to"`
}

// TimelineLayoutService places timeline nodes, maintains the connection
// graph and computes the timeline element's bounding size. Every method
// returns new content and leaves its input untouched.
type TimelineLayoutService struct {
	config *config.DomainConfig
}

// NewTimelineLayoutService creates a layout service
func NewTimelineLayoutService(cfg *config.DomainConfig) *TimelineLayoutService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &TimelineLayoutService{config: cfg}
}

// AddTimeNode appends a time-node at the next spine position. Vertical
// and horizontal timelines link the previous last time-node to it.
func (s *TimelineLayoutService) AddTimeNode(tl entities.TimelineContent, draft NodeDraft) (entities.TimelineContent, entities.TimelineNode) {
	out := tl.Clone()
	spine := spineIndexes(out.Nodes)
	x, y := s.nextSpinePosition(out.Nodes, spine, out.Template.Style)

	node := s.newNode(entities.NodeTypeTime, x, y, draft, out.UserColor)

	if len(spine) > 0 && autoConnects(out.Template.Style) {
		last := spine[len(spine)-1]
		out.Nodes[last].Connections = append(out.Nodes[last].Connections, node.ID)
	}
	out.Nodes = append(out.Nodes, node)
	return out, node.Clone()
}

// AddMilestone appends a milestone offset from the last time-node. It is
// never auto-connected.
func (s *TimelineLayoutService) AddMilestone(tl entities.TimelineContent, draft NodeDraft) (entities.TimelineContent, entities.TimelineNode) {
	out := tl.Clone()
	spine := spineIndexes(out.Nodes)

	x, y := s.config.TimelineOriginX, s.config.TimelineOriginY
	if len(spine) > 0 {
		last := out.Nodes[spine[len(spine)-1]]
		x, y = last.X, last.Y
	}
	if out.Template.Style == entities.StyleHorizontal {
		y += s.config.MilestoneOffsetY
	} else {
		x += s.config.MilestoneOffsetX
	}

	node := s.newNode(entities.NodeTypeMilestone, x, y, draft, out.UserColor)
	out.Nodes = append(out.Nodes, node)
	return out, node.Clone()
}

// MoveNode sets a node's coordinates and recomputes every milestone's
// snap: each names the nearest time-node within the snap radius, or none.
// Time-nodes never carry a snap.
func (s *TimelineLayoutService) MoveNode(tl entities.TimelineContent, id valueobjects.NodeID, x, y float64) (entities.TimelineContent, bool) {
	idx := tl.NodeIndex(id)
	if idx < 0 {
		return tl, false
	}
	out := tl.Clone()
	out.Nodes[idx].X = x
	out.Nodes[idx].Y = y

	for i, n := range out.Nodes {
		if !n.IsMilestone() {
			out.Nodes[i].SnapTo = nil
			continue
		}
		out.Nodes[i].SnapTo = s.nearestTimeNode(out.Nodes, n.Position())
	}
	return out, true
}

// Connect adds a directed edge. Unknown ids, milestone sources and
// (unless allowed) self or duplicate edges are ignored.
func (s *TimelineLayoutService) Connect(tl entities.TimelineContent, from, to valueobjects.NodeID) (entities.TimelineContent, bool) {
	src := tl.NodeIndex(from)
	if src < 0 || tl.NodeIndex(to) < 0 {
		return tl, false
	}
	if tl.Nodes[src].IsMilestone() {
		return tl, false
	}
	if from.Equals(to) && !s.config.AllowSelfConnections {
		return tl, false
	}
	if tl.Nodes[src].ConnectsTo(to) && !s.config.AllowDuplicateConnections {
		return tl, false
	}

	out := tl.Clone()
	out.Nodes[src].Connections = append(out.Nodes[src].Connections, to)
	return out, true
}

// RemoveNode deletes a node along with every edge and snap that
// references it
func (s *TimelineLayoutService) RemoveNode(tl entities.TimelineContent, id valueobjects.NodeID) (entities.TimelineContent, bool) {
	idx := tl.NodeIndex(id)
	if idx < 0 {
		return tl, false
	}
	out := tl.Clone()
	out.Nodes = append(out.Nodes[:idx], out.Nodes[idx+1:]...)

	for i := range out.Nodes {
		n := &out.Nodes[i]
		kept := n.Connections[:0]
		for _, c := range n.Connections {
			if !c.Equals(id) {
				kept = append(kept, c)
			}
		}
		n.Connections = kept
		if n.SnapTo != nil && n.SnapTo.Equals(id) {
			n.SnapTo = nil
		}
	}
	return out, true
}

// BoundingSize returns the smallest element size that shows every node
// footprint with padding and the header band, floored at the timeline
// minimum
func (s *TimelineLayoutService) BoundingSize(tl entities.TimelineContent) valueobjects.Size {
	maxRight, maxBottom := 0.0, 0.0
	for _, n := range tl.Nodes {
		halfW, halfH := s.halfExtent(n)
		maxRight = math.Max(maxRight, n.X+halfW)
		maxBottom = math.Max(maxBottom, n.Y+halfH)
	}

	width := math.Max(s.config.TimelineMinWidth, maxRight+s.config.TimelinePadding)
	height := math.Max(s.config.TimelineMinHeight, maxBottom+s.config.TimelinePadding+s.config.TimelineHeader)
	return valueobjects.NewSize(width, height)
}

// Connections resolves every edge to its endpoint nodes. Edges to
// missing nodes are skipped.
func (s *TimelineLayoutService) Connections(tl entities.TimelineContent) []Connection {
	conns := make([]Connection, 0)
	for _, from := range tl.Nodes {
		for _, targetID := range from.Connections {
			to, ok := tl.Node(targetID)
			if !ok {
				continue
			}
			conns = append(conns, Connection{From: from.Clone(), To: to.Clone()})
		}
	}
	return conns
}

func (s *TimelineLayoutService) nextSpinePosition(nodes []entities.TimelineNode, spine []int, style entities.TimelineStyle) (float64, float64) {
	n := len(spine)
	if n == 0 {
		return s.config.TimelineOriginX, s.config.TimelineOriginY
	}
	last := nodes[spine[n-1]]

	switch style {
	case entities.StyleHorizontal:
		return last.X + s.config.HorizontalSpacing, last.Y
	case entities.StyleBranching:
		parent := nodes[spine[(n-1)/2]]
		dx := s.config.BranchOffsetX
		if n%2 == 1 {
			dx = -dx
		}
		return parent.X + dx, parent.Y + s.config.BranchOffsetY
	default:
		return last.X, last.Y + s.config.VerticalSpacing
	}
}

func (s *TimelineLayoutService) newNode(kind entities.NodeType, x, y float64, draft NodeDraft, userColor string) entities.TimelineNode {
	node := entities.TimelineNode{
		ID:          valueobjects.NewNodeID(),
		X:           x,
		Y:           y,
		Title:       draft.Title,
		Date:        draft.Date,
		Icon:        draft.Icon,
		Color:       draft.Color,
		Type:        kind,
		Connections: []valueobjects.NodeID{},
	}
	if node.Title == "" {
		node.Title = defaultTimeNodeTitle
		if kind == entities.NodeTypeMilestone {
			node.Title = defaultMilestoneNodeTitle
		}
	}
	if node.Date == "" {
		node.Date = defaultNodeDate
	}
	if node.Icon == "" {
		node.Icon = defaultTimeNodeIcon
		if kind == entities.NodeTypeMilestone {
			node.Icon = defaultMilestoneNodeIcon
		}
	}
	if node.Color == "" {
		node.Color = userColor
	}
	return node
}

func (s *TimelineLayoutService) nearestTimeNode(nodes []entities.TimelineNode, from valueobjects.Position) *valueobjects.NodeID {
	var nearest *valueobjects.NodeID
	best := math.Inf(1)
	for _, n := range nodes {
		if n.IsMilestone() {
			continue
		}
		if d := n.Position().DistanceTo(from); d < best {
			best = d
			id := n.ID
			nearest = &id
		}
	}
	if best > s.config.SnapRadius {
		return nil
	}
	return nearest
}

func (s *TimelineLayoutService) halfExtent(n entities.TimelineNode) (float64, float64) {
	if n.IsMilestone() {
		return s.config.MilestoneRadius, s.config.MilestoneRadius
	}
	return s.config.TimeNodeHalfWidth, s.config.TimeNodeHalfHeight
}

func spineIndexes(nodes []entities.TimelineNode) []int {
	spine := make([]int, 0, len(nodes))
	for i, n := range nodes {
		if !n.IsMilestone() {
			spine = append(spine, i)
		}
	}
	return spine
}

func autoConnects(style entities.TimelineStyle) bool {
	return style != entities.StyleBranching
}
