package entities

import "github.com/varangian-core/magical-board/domain/core/valueobjects"

// EditField names an inline-editable text region of an element
type EditField string

const (
	FieldCardHeader    EditField = "card.header"
	FieldCardText      EditField = "card.text"
	FieldTimelineTitle EditField = "timeline.title"
	FieldNodeTitle     EditField = "node.title"
	FieldNodeDate      EditField = "node.date"
)

// IsValid reports whether f is a known field
func (f EditField) IsValid() bool {
	switch f {
	case FieldCardHeader, FieldCardText, FieldTimelineTitle, FieldNodeTitle, FieldNodeDate:
		return true
	}
	return false
}

// IsMultiline reports whether the field accepts newlines. Multi-line
// fields commit on Escape, single-line fields on Enter.
func (f EditField) IsMultiline() bool {
	return f == FieldCardText
}

// NeedsNode reports whether the field lives on a timeline node
func (f EditField) NeedsNode() bool {
	return f == FieldNodeTitle || f == FieldNodeDate
}

// EditTarget addresses one text region
type EditTarget struct {
	ElementID valueobjects.ElementID
	Field     EditField
	NodeID    *valueobjects.NodeID
}

// EditingState is the single in-progress inline edit of a board
type EditingState struct {
	Target       EditTarget
	PendingValue string
}

// ReadField returns the current text of a field, or false if the target
// does not resolve against the content
func ReadField(c Content, target EditTarget) (string, bool) {
	switch content := c.(type) {
	case CardContent:
		switch target.Field {
		case FieldCardHeader:
			return content.Header, true
		case FieldCardText:
			return content.Text, true
		}
	case TimelineContent:
		switch target.Field {
		case FieldTimelineTitle:
			return content.Title, true
		case FieldNodeTitle, FieldNodeDate:
			if target.NodeID == nil {
				return "", false
			}
			node, ok := content.Node(*target.NodeID)
			if !ok {
				return "", false
			}
			if target.Field == FieldNodeTitle {
				return node.Title, true
			}
			return node.Date, true
		}
	}
	return "", false
}

// WriteField returns a copy of the content with the field set to value
func WriteField(c Content, target EditTarget, value string) (Content, bool) {
	switch content := c.(type) {
	case CardContent:
		switch target.Field {
		case FieldCardHeader:
			content.Header = value
			return content, true
		case FieldCardText:
			content.Text = value
			return content, true
		}
	case TimelineContent:
		out := content.Clone()
		switch target.Field {
		case FieldTimelineTitle:
			out.Title = value
			return out, true
		case FieldNodeTitle, FieldNodeDate:
			if target.NodeID == nil {
				return nil, false
			}
			i := out.NodeIndex(*target.NodeID)
			if i < 0 {
				return nil, false
			}
			if target.Field == FieldNodeTitle {
				out.Nodes[i].Title = value
			} else {
				out.Nodes[i].Date = value
			}
			return out, true
		}
	}
	return nil, false
}
