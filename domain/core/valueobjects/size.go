package valueobjects

import "encoding/json"

// MinDimension is the smallest width or height an element may have
const MinDimension = 50.0

// Size is an element's absolute width and height. Both dimensions are
// clamped to MinDimension on construction, so a Size is never smaller
// than 50x50.
type Size struct {
	width  float64
	height float64
}

// NewSize creates a size, clamping each axis to MinDimension
func NewSize(width, height float64) Size {
	return Size{width: clampDimension(width), height: clampDimension(height)}
}

// Width returns the width
func (s Size) Width() float64 {
	return s.width
}

// Height returns the height
func (s Size) Height() float64 {
	return s.height
}

// IsZero reports whether the size was never set
func (s Size) IsZero() bool {
	return s.width == 0 && s.height == 0
}

// Equals checks if two sizes are equal
func (s Size) Equals(other Size) bool {
	return s.width == other.width && s.height == other.height
}

// Scale returns the size multiplied per axis, clamped to the floor
func (s Size) Scale(sx, sy float64) Size {
	return NewSize(s.width*sx, s.height*sy)
}

// AtLeast returns a size no smaller than min on either axis
func (s Size) AtLeast(minWidth, minHeight float64) Size {
	w, h := s.width, s.height
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}
	return NewSize(w, h)
}

type sizeJSON struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MarshalJSON implements json.Marshaler
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(sizeJSON{Width: s.width, Height: s.height})
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Size) UnmarshalJSON(data []byte) error {
	var raw sizeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewSize(raw.Width, raw.Height)
	return nil
}

// clampDimension also maps NaN to the floor since NaN fails every comparison
func clampDimension(v float64) float64 {
	if !(v >= MinDimension) {
		return MinDimension
	}
	return v
}
