package valueobjects

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
)

// ElementID identifies a board element
type ElementID struct {
	value string
}

// NewElementID creates a new random ElementID
func NewElementID() ElementID {
	return ElementID{value: uuid.New().String()}
}

// ElementIDFrom wraps an existing identifier. Persisted ids are opaque,
// so only emptiness is checked.
func ElementIDFrom(id string) (ElementID, error) {
	if id == "" {
		return ElementID{}, errors.New("element ID cannot be empty")
	}
	return ElementID{value: id}, nil
}

// String returns the string representation
func (id ElementID) String() string {
	return id.value
}

// Equals checks if two ElementIDs are equal
func (id ElementID) Equals(other ElementID) bool {
	return id.value == other.value
}

// IsZero checks if the ElementID is the zero value
func (id ElementID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ElementID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.value)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ElementID) UnmarshalJSON(data []byte) error {
	return unmarshalID(data, &id.value, "ElementID")
}

// NodeID identifies a timeline node within a timeline element
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NodeIDFrom wraps an existing identifier
func NodeIDFrom(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.value)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	return unmarshalID(data, &id.value, "NodeID")
}

func unmarshalID(data []byte, target *string, kind string) error {
	if string(data) == "null" {
		return nil
	}
	value, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New(kind + " must be a string")
	}
	*target = value
	return nil
}
