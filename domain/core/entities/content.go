package entities

import (
	"encoding/json"
	"fmt"

	"github.com/varangian-core/magical-board/domain/core/valueobjects"
)

// ElementType tags the content variant of a board element
type ElementType string

const (
	ElementTypeCard     ElementType = "card"
	ElementTypeImage    ElementType = "image"
	ElementTypeTimeline ElementType = "timeline"
)

// IsValid reports whether t names a known variant
func (t ElementType) IsValid() bool {
	switch t {
	case ElementTypeCard, ElementTypeImage, ElementTypeTimeline:
		return true
	}
	return false
}

// Content is the payload of a board element. The set of implementations
// is closed: CardContent, ImageContent and TimelineContent.
type Content interface {
	Kind() ElementType
	clone() Content
}

// CardContent is a sticky-note style text card
type CardContent struct {
	Header   string `json:"header"`
	Text     string `json:"text"`
	Color    string `json:"color"`
	UserIcon string `json:"userIcon"`
	UserName string `json:"userName"`
}

// Kind implements Content
func (CardContent) Kind() ElementType { return ElementTypeCard }

func (c CardContent) clone() Content { return c }

// ImageContent references an uploaded image
type ImageContent struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Kind implements Content
func (ImageContent) Kind() ElementType { return ElementTypeImage }

func (c ImageContent) clone() Content { return c }

// TimelineStyle selects the placement rule for new nodes
type TimelineStyle string

const (
	StyleVertical   TimelineStyle = "vertical"
	StyleHorizontal TimelineStyle = "horizontal"
	StyleBranching  TimelineStyle = "branching"
)

// TimelineTemplate describes a timeline's look and placement style
type TimelineTemplate struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Style       TimelineStyle `json:"style"`
}

// NodeType distinguishes spine nodes from milestone markers
type NodeType string

const (
	NodeTypeTime      NodeType = "time"
	NodeTypeMilestone NodeType = "milestone"
)

// TimelineNode is a point in a timeline graph. X and Y are relative to
// the timeline element's origin.
type TimelineNode struct {
	ID          valueobjects.NodeID   `json:"id"`
	X           float64               `json:"x"`
	Y           float64               `json:"y"`
	Title       string                `json:"title"`
	Date        string                `json:"date"`
	Icon        string                `json:"icon"`
	Color       string                `json:"color"`
	Type        NodeType              `json:"type"`
	Connections []valueobjects.NodeID `json:"connections"`
	SnapTo      *valueobjects.NodeID  `json:"snapTo,omitempty"`
}

// Position returns the node coordinates as a value object
func (n TimelineNode) Position() valueobjects.Position {
	return valueobjects.NewPosition(n.X, n.Y)
}

// IsMilestone reports whether the node is a milestone marker
func (n TimelineNode) IsMilestone() bool {
	return n.Type == NodeTypeMilestone
}

// ConnectsTo reports whether the node has an edge to target
func (n TimelineNode) ConnectsTo(target valueobjects.NodeID) bool {
	for _, id := range n.Connections {
		if id.Equals(target) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the node
func (n TimelineNode) Clone() TimelineNode {
	out := n
	if n.Connections != nil {
		out.Connections = make([]valueobjects.NodeID, len(n.Connections))
		copy(out.Connections, n.Connections)
	}
	if n.SnapTo != nil {
		snap := *n.SnapTo
		out.SnapTo = &snap
	}
	return out
}

// TimelineContent is a node graph laid out inside a timeline element
type TimelineContent struct {
	Template  TimelineTemplate `json:"template"`
	Title     string           `json:"title"`
	Nodes     []TimelineNode   `json:"nodes"`
	UserColor string           `json:"userColor"`
}

// Kind implements Content
func (TimelineContent) Kind() ElementType { return ElementTypeTimeline }

func (c TimelineContent) clone() Content { return c.Clone() }

// Clone returns a deep copy of the timeline
func (c TimelineContent) Clone() TimelineContent {
	out := c
	if c.Nodes != nil {
		out.Nodes = make([]TimelineNode, len(c.Nodes))
		for i, n := range c.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	return out
}

// NodeIndex returns the index of the node with the given id, or -1
func (c TimelineContent) NodeIndex(id valueobjects.NodeID) int {
	for i, n := range c.Nodes {
		if n.ID.Equals(id) {
			return i
		}
	}
	return -1
}

// Node returns the node with the given id
func (c TimelineContent) Node(id valueobjects.NodeID) (TimelineNode, bool) {
	if i := c.NodeIndex(id); i >= 0 {
		return c.Nodes[i], true
	}
	return TimelineNode{}, false
}

// CloneContent returns a deep copy of any content variant
func CloneContent(c Content) Content {
	if c == nil {
		return nil
	}
	return c.clone()
}

// MarshalContent encodes content as JSON. The variant is not embedded;
// it travels alongside as the element type.
func MarshalContent(c Content) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("content is nil")
	}
	return json.Marshal(c)
}

// UnmarshalContent decodes JSON into the variant named by kind
func UnmarshalContent(kind ElementType, data []byte) (Content, error) {
	switch kind {
	case ElementTypeCard:
		var c CardContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode card content: %w", err)
		}
		return c, nil
	case ElementTypeImage:
		var c ImageContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode image content: %w", err)
		}
		return c, nil
	case ElementTypeTimeline:
		var c TimelineContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode timeline content: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown element type %q", kind)
	}
}
