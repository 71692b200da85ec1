package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "board.db"), zap.NewNop())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBoardRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBoardRepository(openTestDB(t), zap.NewNop())

	desc := "Quarterly goals"
	board, err := entities.NewBoard("b1", "Plans", "moon-kingdom", "u1", &desc)
	require.NoError(t, err)
	require.NoError(t, repo.CreateBoard(ctx, board))
	assert.True(t, pkgerrors.IsConflict(repo.CreateBoard(ctx, board)))

	got, err := repo.GetBoard(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Plans", got.Name())
	require.NotNil(t, got.Description())
	assert.Equal(t, desc, *got.Description())

	_, err = repo.GetBoard(ctx, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))

	name := "Renamed"
	updated, err := repo.UpdateBoard(ctx, "b1", entities.BoardPatch{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name())
	missing, err := repo.UpdateBoard(ctx, "missing", entities.BoardPatch{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.AddUserToBoard(ctx, "b1", "u2"))
	require.NoError(t, repo.AddUserToBoard(ctx, "b1", "u2"))
	users, err := repo.GetBoardUsers(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)
	assert.True(t, pkgerrors.IsNotFound(repo.AddUserToBoard(ctx, "missing", "u2")))

	deleted, err := repo.DeleteBoard(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, deleted)
	users, _ = repo.GetBoardUsers(ctx, "b1")
	assert.Empty(t, users)
}

func TestBoardRepository_KingdomOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewBoardRepository(openTestDB(t), zap.NewNop())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new", "mid"} {
		updated := base.Add([]time.Duration{time.Hour, 3 * time.Hour, 2 * time.Hour}[i])
		b, err := entities.ReconstructBoard(id, id, nil, "star-palace", "u1", base, updated)
		require.NoError(t, err)
		require.NoError(t, repo.CreateBoard(ctx, b))
	}

	boards, err := repo.GetBoardsByKingdom(ctx, "star-palace")
	require.NoError(t, err)
	require.Len(t, boards, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{boards[0].ID(), boards[1].ID(), boards[2].ID()})
}

func TestElementRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	boards := NewBoardRepository(db, zap.NewNop())
	repo := NewElementRepository(db, zap.NewNop())

	board, _ := entities.NewBoard("b1", "Plans", "moon-kingdom", "u1", nil)
	require.NoError(t, boards.CreateBoard(ctx, board))

	lock := "u9"
	timeline := entities.NewTimelineContent(entities.BranchingTemplate, nil, nil)
	timeline.Nodes = append(timeline.Nodes, entities.TimelineNode{
		ID: valueobjects.NewNodeID(), X: 80, Y: 80, Title: "Start", Type: entities.NodeTypeTime,
	})

	var ids []string
	for z, draft := range []entities.ElementDraft{
		{Content: entities.CardContent{Header: "A", Text: "first"}},
		{Content: timeline, LockedBy: &lock},
	} {
		el := entities.NewBoardElement(draft, entities.ElementDefaults{ZIndex: 1 - z})
		rec, err := ports.NewElementRecord("b1", el)
		require.NoError(t, err)
		require.NoError(t, repo.AddElement(ctx, rec))
		ids = append(ids, rec.ID)
	}

	records, err := repo.GetBoardElements(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ids[1], records[0].ID)
	require.NotNil(t, records[0].LockedBy)
	assert.Equal(t, "u9", *records[0].LockedBy)

	el, err := records[0].ToElement()
	require.NoError(t, err)
	tl, ok := el.Timeline()
	require.True(t, ok)
	assert.Equal(t, "Start", tl.Nodes[0].Title)

	x := 42.0
	updated, err := repo.UpdateElement(ctx, ids[0], ports.ElementRecordPatch{PositionX: &x})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 42.0, updated.PositionX)
	missing, err := repo.UpdateElement(ctx, "nope", ports.ElementRecordPatch{PositionX: &x})
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err = repo.DeleteElement(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.DeleteBoardElements(ctx, "b1"))
	records, _ = repo.GetBoardElements(ctx, "b1")
	assert.Empty(t, records)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t), zap.NewNop())
	avatar := valueobjects.Avatar{ID: "crystal", Name: "Crystal Guardian", Emoji: "💎", Color: "#B0E0E6"}

	first, _ := entities.ReconstructUser("u1", "Ami", avatar, time.Unix(10, 0).UTC(), time.Unix(10, 0).UTC())
	second, _ := entities.ReconstructUser("u2", "Rei", avatar, time.Unix(20, 0).UTC(), time.Unix(20, 0).UTC())
	require.NoError(t, repo.CreateUser(ctx, first))
	require.NoError(t, repo.CreateUser(ctx, second))

	users, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[0].ID())
	assert.Equal(t, avatar, users[0].Avatar())

	require.NoError(t, repo.UpdateLastActive(ctx, "u1"))
	users, _ = repo.GetAllUsers(ctx)
	assert.Equal(t, "u1", users[0].ID())
	assert.True(t, pkgerrors.IsNotFound(repo.UpdateLastActive(ctx, "ghost")))

	deleted, err := repo.DeleteUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.GetUser(ctx, "u1")
	assert.True(t, pkgerrors.IsNotFound(err))
}
