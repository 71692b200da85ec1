package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

func TestBoardRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBoardRepository()

	board, err := entities.NewBoard("", "Plans", "moon-kingdom", "u1", nil)
	require.NoError(t, err)
	require.NoError(t, repo.CreateBoard(ctx, board))
	assert.Error(t, repo.CreateBoard(ctx, board))

	users, err := repo.GetBoardUsers(ctx, board.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)

	require.NoError(t, repo.AddUserToBoard(ctx, board.ID(), "u2"))
	require.NoError(t, repo.AddUserToBoard(ctx, board.ID(), "u2"))
	users, _ = repo.GetBoardUsers(ctx, board.ID())
	assert.Equal(t, []string{"u1", "u2"}, users)

	_, err = repo.GetBoard(ctx, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))

	name := "Renamed"
	updated, err := repo.UpdateBoard(ctx, board.ID(), entities.BoardPatch{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name())

	missing, err := repo.UpdateBoard(ctx, "missing", entities.BoardPatch{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := repo.DeleteBoard(ctx, board.ID())
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, _ = repo.DeleteBoard(ctx, board.ID())
	assert.False(t, deleted)
}

func TestBoardRepository_KingdomOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewBoardRepository()

	older, _ := entities.ReconstructBoard("b1", "Older", nil, "star-palace", "u1", time.Unix(100, 0), time.Unix(100, 0))
	newer, _ := entities.ReconstructBoard("b2", "Newer", nil, "star-palace", "u1", time.Unix(50, 0), time.Unix(200, 0))
	other, _ := entities.ReconstructBoard("b3", "Other", nil, "moon-kingdom", "u1", time.Unix(300, 0), time.Unix(300, 0))
	for _, b := range []*entities.Board{older, newer, other} {
		require.NoError(t, repo.CreateBoard(ctx, b))
	}

	boards, err := repo.GetBoardsByKingdom(ctx, "star-palace")
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, "b2", boards[0].ID())
	assert.Equal(t, "b1", boards[1].ID())
}

func TestElementRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewElementRepository()

	var records []ports.ElementRecord
	for z := 2; z >= 0; z-- {
		el := entities.NewBoardElement(entities.ElementDraft{}, entities.ElementDefaults{ZIndex: z})
		rec, err := ports.NewElementRecord("board-1", el)
		require.NoError(t, err)
		require.NoError(t, repo.AddElement(ctx, rec))
		records = append(records, rec)
	}
	other := entities.NewBoardElement(entities.ElementDraft{}, entities.ElementDefaults{})
	otherRec, _ := ports.NewElementRecord("board-2", other)
	require.NoError(t, repo.AddElement(ctx, otherRec))

	got, err := repo.GetBoardElements(ctx, "board-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{got[0].ZIndex, got[1].ZIndex, got[2].ZIndex})

	x := 999.0
	updated, err := repo.UpdateElement(ctx, records[0].ID, ports.ElementRecordPatch{PositionX: &x})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 999.0, updated.PositionX)

	missing, err := repo.UpdateElement(ctx, valueobjects.NewElementID().String(), ports.ElementRecordPatch{PositionX: &x})
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := repo.DeleteElement(ctx, records[1].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.DeleteBoardElements(ctx, "board-1"))
	got, _ = repo.GetBoardElements(ctx, "board-1")
	assert.Empty(t, got)
	got, _ = repo.GetBoardElements(ctx, "board-2")
	assert.Len(t, got, 1)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	avatar := valueobjects.Avatar{ID: "moon", Name: "Moon Guardian", Emoji: "🌙", Color: "#FFB6E1"}

	first, _ := entities.ReconstructUser("u1", "Usagi", avatar, time.Unix(10, 0), time.Unix(10, 0))
	second, _ := entities.ReconstructUser("u2", "Ami", avatar, time.Unix(20, 0), time.Unix(20, 0))
	require.NoError(t, repo.CreateUser(ctx, first))
	require.NoError(t, repo.CreateUser(ctx, second))

	users, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[0].ID())

	require.NoError(t, repo.UpdateLastActive(ctx, "u1"))
	users, _ = repo.GetAllUsers(ctx)
	assert.Equal(t, "u1", users[0].ID())

	assert.True(t, pkgerrors.IsNotFound(repo.UpdateLastActive(ctx, "nobody")))
	_, err = repo.GetUser(ctx, "nobody")
	assert.True(t, pkgerrors.IsNotFound(err))

	deleted, err := repo.DeleteUser(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, _ = repo.DeleteUser(ctx, "u2")
	assert.False(t, deleted)
}
