// Package catalog holds the static kingdoms, avatars and timeline templates
// users choose from.
package catalog

import (
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
)

// Kingdom is a themed category boards are grouped under
type Kingdom struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

var kingdoms = []Kingdom{
	{ID: "moon-kingdom", Name: "Moon Kingdom", Description: "Where dreams and magic intertwine under the eternal moonlight", Icon: "🌙", Color: "#FFB6E1"},
	{ID: "star-palace", Name: "Star Palace", Description: "A celestial realm where wishes come true among the constellations", Icon: "⭐", Color: "#DDA0DD"},
	{ID: "crystal-tower", Name: "Crystal Tower", Description: "Ancient wisdom crystallized in towers of pure magical energy", Icon: "💎", Color: "#B0E0E6"},
	{ID: "flower-garden", Name: "Flower Garden", Description: "Where nature's beauty blooms with magical essence", Icon: "🌸", Color: "#FFB6C1"},
	{ID: "rainbow-bridge", Name: "Rainbow Bridge", Description: "Connecting all realms with bridges of pure light and color", Icon: "🌈", Color: "#FF6347"},
	{ID: "heart-sanctuary", Name: "Heart Sanctuary", Description: "The sacred space where love and friendship forge eternal bonds", Icon: "💖", Color: "#FF69B4"},
}

var avatars = []valueobjects.Avatar{
	{ID: "moon", Name: "Moon Guardian", Emoji: "🌙", Color: "#FFB6E1"},
	{ID: "star", Name: "Star Guardian", Emoji: "⭐", Color: "#DDA0DD"},
	{ID: "heart", Name: "Heart Guardian", Emoji: "💖", Color: "#FF69B4"},
	{ID: "crystal", Name: "Crystal Guardian", Emoji: "💎", Color: "#B0E0E6"},
	{ID: "flower", Name: "Flower Guardian", Emoji: "🌸", Color: "#FFB6C1"},
	{ID: "rainbow", Name: "Rainbow Guardian", Emoji: "🌈", Color: "#FF6347"},
}

// Kingdoms returns all kingdoms in display order
func Kingdoms() []Kingdom {
	out := make([]Kingdom, len(kingdoms))
	copy(out, kingdoms)
	return out
}

// KingdomByID looks up a kingdom
func KingdomByID(id string) (Kingdom, bool) {
	for _, k := range kingdoms {
		if k.ID == id {
			return k, true
		}
	}
	return Kingdom{}, false
}

// Avatars returns the selectable avatars
func Avatars() []valueobjects.Avatar {
	out := make([]valueobjects.Avatar, len(avatars))
	copy(out, avatars)
	return out
}

// AvatarByID looks up an avatar
func AvatarByID(id string) (valueobjects.Avatar, bool) {
	for _, a := range avatars {
		if a.ID == id {
			return a, true
		}
	}
	return valueobjects.Avatar{}, false
}

// Templates returns the timeline templates
func Templates() []entities.TimelineTemplate {
	return entities.TimelineTemplates()
}
