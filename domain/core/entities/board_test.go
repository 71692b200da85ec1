package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

func TestNewBoard_Validation(t *testing.T) {
	tests := []struct {
		name      string
		boardName string
		kingdomID string
		userID    string
		wantErr   bool
	}{
		{"valid", "Moon plans", "moon-kingdom", "u1", false},
		{"blank name", "  ", "moon-kingdom", "u1", true},
		{"missing kingdom", "Plans", "", "u1", true},
		{"missing user", "Plans", "moon-kingdom", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBoard("", tt.boardName, tt.kingdomID, tt.userID, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, b.ID())
			assert.Equal(t, b.CreatedAt(), b.UpdatedAt())
		})
	}
}

func TestBoard_Apply(t *testing.T) {
	b, err := NewBoard("", "Plans", "moon-kingdom", "u1", nil)
	require.NoError(t, err)
	created := b.UpdatedAt()

	name, desc := "Renamed", "a description"
	require.NoError(t, b.Apply(BoardPatch{Name: &name, Description: &desc}))
	assert.Equal(t, "Renamed", b.Name())
	require.NotNil(t, b.Description())
	assert.Equal(t, "a description", *b.Description())
	assert.False(t, b.UpdatedAt().Before(created))

	empty := ""
	assert.Error(t, b.Apply(BoardPatch{Name: &empty}))
	assert.True(t, BoardPatch{}.IsEmpty())
}

func TestUser_New(t *testing.T) {
	_, err := NewUser("", "Ami", valueobjects.Avatar{})
	assert.Error(t, err)

	avatar := valueobjects.Avatar{ID: "crystal", Name: "Crystal Guardian", Emoji: "💎", Color: "#B0E0E6"}
	_, err = NewUser("", " ", avatar)
	assert.Error(t, err)

	u, err := NewUser("", "Ami", avatar)
	require.NoError(t, err)
	before := u.LastActive()
	u.Touch()
	assert.False(t, u.LastActive().Before(before))
}

func TestNewBoard_KeepsSuppliedID(t *testing.T) {
	b, err := NewBoard("board-42", "Plans", "moon-kingdom", "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, "board-42", b.ID())
}
