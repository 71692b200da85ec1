package valueobjects

import pkgerrors "github.com/varangian-core/magical-board/pkg/errors"

// Avatar is the persona a user picks: a named emoji with a theme color
type Avatar struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// NewAvatar creates an avatar, requiring an id and an emoji
func NewAvatar(id, name, emoji, color string) (Avatar, error) {
	if id == "" {
		return Avatar{}, pkgerrors.NewValidationError("avatar id is required")
	}
	if emoji == "" {
		return Avatar{}, pkgerrors.NewValidationError("avatar emoji is required")
	}
	return Avatar{ID: id, Name: name, Emoji: emoji, Color: color}, nil
}

// IsZero reports whether no avatar was chosen
func (a Avatar) IsZero() bool {
	return a == Avatar{}
}
