// Package canvas translates pointer and keyboard gestures on a board into
// board state mutations.
package canvas

import (
	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/core/aggregates"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	"github.com/varangian-core/magical-board/domain/services"
)

// Key is a keyboard key relevant to inline editing
type Key string

const (
	KeyEnter  Key = "Enter"
	KeyEscape Key = "Escape"
)

// TransformEvent is the renderer's report at the end of a resize or
// rotate gesture. Width and Height are the pre-scale dimensions.
type TransformEvent struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Rotation float64 `json:"rotation"`
}

// TransformResult tells the renderer to reset its scale to identity and
// adopt the committed absolute size
type TransformResult struct {
	ScaleX float64           `json:"scaleX"`
	ScaleY float64           `json:"scaleY"`
	Size   valueobjects.Size `json:"size"`
}

// ConnectOutcome reports what a node click did in connect mode
type ConnectOutcome string

const (
	ConnectPending   ConnectOutcome = "pending"
	ConnectCancelled ConnectOutcome = "cancelled"
	ConnectConnected ConnectOutcome = "connected"
	ConnectRejected  ConnectOutcome = "rejected"
	ConnectIgnored   ConnectOutcome = "ignored"
)

// Controller is the interaction layer over one board's state. It is not
// safe for concurrent use.
type Controller struct {
	state  *aggregates.BoardState
	layout *services.TimelineLayoutService
}

// NewController creates a controller over state
func NewController(state *aggregates.BoardState, layout *services.TimelineLayoutService) *Controller {
	if layout == nil {
		layout = services.NewTimelineLayoutService(state.Config())
	}
	return &Controller{state: state, layout: layout}
}

// State returns the underlying board state
func (c *Controller) State() *aggregates.BoardState {
	return c.state
}

// Element gestures

// DragEnd commits the element's final position
func (c *Controller) DragEnd(id valueobjects.ElementID, x, y float64) bool {
	pos := valueobjects.NewPosition(x, y)
	return c.state.UpdateElement(id, aggregates.ElementPatch{Position: &pos})
}

// TransformEnd folds the renderer's scale into an absolute size, clamped
// to the minimum dimension, and commits it along with rotation and
// position. Only resizable elements accept it; others report false and
// stay untouched.
func (c *Controller) TransformEnd(id valueobjects.ElementID, ev TransformEvent) (TransformResult, bool) {
	el, ok := c.state.Element(id)
	if !ok || !el.Resizable() {
		return TransformResult{}, false
	}

	size := valueobjects.NewSize(ev.Width*ev.ScaleX, ev.Height*ev.ScaleY)
	pos := valueobjects.NewPosition(ev.X, ev.Y)
	rotation := ev.Rotation

	ok = c.state.UpdateElement(id, aggregates.ElementPatch{
		Position: &pos,
		Size:     &size,
		Rotation: &rotation,
	})
	return TransformResult{ScaleX: 1, ScaleY: 1, Size: size}, ok
}

// ClickBackground clears the selection
func (c *Controller) ClickBackground() {
	c.state.SetSelectedElement(nil)
}

// ClickElement selects an element
func (c *Controller) ClickElement(id valueobjects.ElementID) {
	c.state.SetSelectedElement(&id)
}

// PressDelete deletes one element. Other elements and their selection are
// untouched.
func (c *Controller) PressDelete(id valueobjects.ElementID) bool {
	return c.state.DeleteElement(id)
}

// AddElement adds an element from the toolbar. A timeline is sized to
// cover its nodes.
func (c *Controller) AddElement(draft entities.ElementDraft) *entities.BoardElement {
	if tl, ok := draft.Content.(entities.TimelineContent); ok {
		size := c.layout.BoundingSize(tl)
		draft.Size = &size
	}
	return c.state.AddElement(draft)
}

// AddTimeline adds an empty timeline built from a template
func (c *Controller) AddTimeline(templateID string, position *valueobjects.Position) (*entities.BoardElement, bool) {
	template, ok := entities.TemplateByID(templateID)
	if !ok {
		return nil, false
	}
	cfg := c.state.Config()
	size := valueobjects.NewSize(cfg.TimelineMinWidth, cfg.TimelineMinHeight)
	content := entities.NewTimelineContent(template, c.state.CurrentUser(), cfg)

	return c.state.AddElement(entities.ElementDraft{
		Position: position,
		Size:     &size,
		Content:  content,
	}), true
}

// ImageLoaded adds one image element for a completed upload
func (c *Controller) ImageLoaded(image ports.StoredImage) *entities.BoardElement {
	return c.state.AddElement(entities.ElementDraft{
		Content: entities.ImageContent{
			URL:  image.DataURL,
			Name: image.Name,
			Size: image.Size,
		},
	})
}

// Inline editing

// DoubleClick opens an inline edit. An edit already open is committed
// first, as if it had lost focus.
func (c *Controller) DoubleClick(target entities.EditTarget) bool {
	if c.state.Editing() != nil {
		c.state.CommitEdit()
	}
	return c.state.BeginEdit(target)
}

// EditInput records typed text
func (c *Controller) EditInput(value string) bool {
	return c.state.SetPendingValue(value)
}

// EditKey commits on Enter for single-line fields and on Escape for
// multi-line fields. Other combinations leave the edit open.
func (c *Controller) EditKey(key Key) bool {
	editing := c.state.Editing()
	if editing == nil {
		return false
	}
	multiline := editing.Target.Field.IsMultiline()
	switch {
	case key == KeyEnter && !multiline, key == KeyEscape && multiline:
		return c.state.CommitEdit()
	}
	return false
}

// Blur commits whatever edit is open
func (c *Controller) Blur() bool {
	if c.state.Editing() == nil {
		return false
	}
	return c.state.CommitEdit()
}

// Timeline gestures

// AddTimelineNode places a new node on a timeline element and resizes the
// element to fit
func (c *Controller) AddTimelineNode(elementID valueobjects.ElementID, nodeType entities.NodeType, draft services.NodeDraft) (entities.TimelineNode, bool) {
	tl, ok := c.timeline(elementID)
	if !ok {
		return entities.TimelineNode{}, false
	}

	var node entities.TimelineNode
	switch nodeType {
	case entities.NodeTypeMilestone:
		tl, node = c.layout.AddMilestone(tl, draft)
	case entities.NodeTypeTime, "":
		tl, node = c.layout.AddTimeNode(tl, draft)
	default:
		return entities.TimelineNode{}, false
	}
	return node, c.commitTimeline(elementID, tl)
}

// DragTimelineNode moves a node, refreshes snapping and resizes the element
func (c *Controller) DragTimelineNode(elementID valueobjects.ElementID, nodeID valueobjects.NodeID, x, y float64) bool {
	tl, ok := c.timeline(elementID)
	if !ok {
		return false
	}
	tl, ok = c.layout.MoveNode(tl, nodeID, x, y)
	if !ok {
		return false
	}
	return c.commitTimeline(elementID, tl)
}

// RemoveTimelineNode deletes a node and everything that references it
func (c *Controller) RemoveTimelineNode(elementID valueobjects.ElementID, nodeID valueobjects.NodeID) bool {
	tl, ok := c.timeline(elementID)
	if !ok {
		return false
	}
	tl, ok = c.layout.RemoveNode(tl, nodeID)
	if !ok {
		return false
	}

	if p := c.state.PendingConnection(); p != nil && p.ElementID.Equals(elementID) && p.NodeID.Equals(nodeID) {
		c.state.SetPendingConnection(nil)
	}
	if e := c.state.Editing(); e != nil && e.Target.ElementID.Equals(elementID) && e.Target.NodeID != nil && e.Target.NodeID.Equals(nodeID) {
		c.state.CancelEdit()
	}
	return c.commitTimeline(elementID, tl)
}

// ClickNodeForConnect drives the two-click connect gesture. The first
// click picks the source. Clicking the source again cancels. Any other
// node of the same timeline becomes the target and the gesture resets.
// A click on another timeline starts over from that node.
func (c *Controller) ClickNodeForConnect(elementID valueobjects.ElementID, nodeID valueobjects.NodeID) ConnectOutcome {
	tl, ok := c.timeline(elementID)
	if !ok {
		return ConnectIgnored
	}
	if _, ok := tl.Node(nodeID); !ok {
		return ConnectIgnored
	}

	pending := c.state.PendingConnection()
	if pending == nil || !pending.ElementID.Equals(elementID) {
		c.state.SetPendingConnection(&aggregates.PendingConnection{ElementID: elementID, NodeID: nodeID})
		return ConnectPending
	}

	c.state.SetPendingConnection(nil)
	if pending.NodeID.Equals(nodeID) {
		return ConnectCancelled
	}

	tl, ok = c.layout.Connect(tl, pending.NodeID, nodeID)
	if !ok {
		return ConnectRejected
	}
	c.state.UpdateElement(elementID, aggregates.ElementPatch{Content: tl})
	return ConnectConnected
}

// Connections lists a timeline's edges as endpoint pairs
func (c *Controller) Connections(elementID valueobjects.ElementID) ([]services.Connection, bool) {
	tl, ok := c.timeline(elementID)
	if !ok {
		return nil, false
	}
	return c.layout.Connections(tl), true
}

func (c *Controller) timeline(id valueobjects.ElementID) (entities.TimelineContent, bool) {
	el, ok := c.state.Element(id)
	if !ok {
		return entities.TimelineContent{}, false
	}
	return el.Timeline()
}

func (c *Controller) commitTimeline(id valueobjects.ElementID, tl entities.TimelineContent) bool {
	size := c.layout.BoundingSize(tl)
	return c.state.UpdateElement(id, aggregates.ElementPatch{Content: tl, Size: &size})
}
