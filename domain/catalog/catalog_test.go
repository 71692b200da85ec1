package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKingdoms(t *testing.T) {
	all := Kingdoms()
	require.Len(t, all, 6)

	ids := make(map[string]bool)
	for _, k := range all {
		assert.NotEmpty(t, k.Name)
		assert.NotEmpty(t, k.Icon)
		ids[k.ID] = true
	}
	for _, id := range []string{"moon-kingdom", "star-palace", "crystal-tower", "flower-garden", "rainbow-bridge", "heart-sanctuary"} {
		assert.True(t, ids[id], id)
	}

	all[0].Name = "mutated"
	k, ok := KingdomByID("moon-kingdom")
	require.True(t, ok)
	assert.Equal(t, "Moon Kingdom", k.Name)

	_, ok = KingdomByID("sun-kingdom")
	assert.False(t, ok)
}

func TestAvatars(t *testing.T) {
	require.Len(t, Avatars(), 6)

	a, ok := AvatarByID("crystal")
	require.True(t, ok)
	assert.Equal(t, "💎", a.Emoji)
	assert.Equal(t, "#B0E0E6", a.Color)

	_, ok = AvatarByID("")
	assert.False(t, ok)
}

func TestTemplates(t *testing.T) {
	templates := Templates()
	require.Len(t, templates, 3)
	assert.Equal(t, "vertical", templates[0].ID)
}
