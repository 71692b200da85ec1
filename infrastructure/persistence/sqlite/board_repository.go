package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/domain/core/entities"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

type boardRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	KingdomID   string         `db:"kingdom_id"`
	CreatedBy   string         `db:"created_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func newBoardRow(b *entities.Board) boardRow {
	row := boardRow{
		ID:        b.ID(),
		Name:      b.Name(),
		KingdomID: b.KingdomID(),
		CreatedBy: b.CreatedBy(),
		CreatedAt: b.CreatedAt().UTC(),
		UpdatedAt: b.UpdatedAt().UTC(),
	}
	if b.Description() != nil {
		row.Description = sql.NullString{String: *b.Description(), Valid: true}
	}
	return row
}

func (r boardRow) toEntity() (*entities.Board, error) {
	var desc *string
	if r.Description.Valid {
		d := r.Description.String
		desc = &d
	}
	return entities.ReconstructBoard(r.ID, r.Name, desc, r.KingdomID, r.CreatedBy, r.CreatedAt, r.UpdatedAt)
}

const boardColumns = `id, name, description, kingdom_id, created_by, created_at, updated_at`

// BoardRepository stores boards and membership in SQLite
type BoardRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewBoardRepository creates a new SQLite board repository
func NewBoardRepository(db *sqlx.DB, logger *zap.Logger) *BoardRepository {
	return &BoardRepository{db: db, logger: logger}
}

// CreateBoard inserts the board and its creator's membership in one transaction
func (r *BoardRepository) CreateBoard(ctx context.Context, board *entities.Board) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapError("begin create board", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO boards (` + boardColumns + `)
	          VALUES (:id, :name, :description, :kingdom_id, :created_by, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, newBoardRow(board)); err != nil {
		return mapError("insert board", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO board_users (board_id, user_id, joined_at) VALUES (?, ?, ?)`,
		board.ID(), board.CreatedBy(), board.CreatedAt().UTC(),
	); err != nil {
		return mapError("insert board creator", err)
	}
	if err := tx.Commit(); err != nil {
		return mapError("commit create board", err)
	}

	r.logger.Debug("Board inserted", zap.String("board_id", board.ID()))
	return nil
}

// GetBoard retrieves a board by id
func (r *BoardRepository) GetBoard(ctx context.Context, id string) (*entities.Board, error) {
	var row boardRow
	err := r.db.GetContext(ctx, &row, `SELECT `+boardColumns+` FROM boards WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("board")
	}
	if err != nil {
		return nil, mapError("get board", err)
	}
	return row.toEntity()
}

// GetBoardsByKingdom lists a kingdom's boards, most recently updated first
func (r *BoardRepository) GetBoardsByKingdom(ctx context.Context, kingdomID string) ([]*entities.Board, error) {
	var rows []boardRow
	query := `SELECT ` + boardColumns + ` FROM boards WHERE kingdom_id = ? ORDER BY updated_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, kingdomID); err != nil {
		return nil, mapError("list boards", err)
	}

	out := make([]*entities.Board, 0, len(rows))
	for _, row := range rows {
		b, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// UpdateBoard applies a patch, returning nil when the board is missing
func (r *BoardRepository) UpdateBoard(ctx context.Context, id string, patch entities.BoardPatch) (*entities.Board, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, mapError("begin update board", err)
	}
	defer tx.Rollback()

	var row boardRow
	err = tx.GetContext(ctx, &row, `SELECT `+boardColumns+` FROM boards WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get board", err)
	}

	board, err := row.toEntity()
	if err != nil {
		return nil, err
	}
	if err := board.Apply(patch); err != nil {
		return nil, err
	}

	query := `UPDATE boards SET name = :name, description = :description, kingdom_id = :kingdom_id, updated_at = :updated_at
	          WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, newBoardRow(board)); err != nil {
		return nil, mapError("update board", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError("commit update board", err)
	}
	return board, nil
}

// DeleteBoard removes a board. Elements and memberships cascade.
func (r *BoardRepository) DeleteBoard(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return false, mapError("delete board", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// AddUserToBoard records membership once per user
func (r *BoardRepository) AddUserToBoard(ctx context.Context, boardID, userID string) error {
	if _, err := r.GetBoard(ctx, boardID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO board_users (board_id, user_id, joined_at) VALUES (?, ?, ?)`,
		boardID, userID, time.Now().UTC(),
	)
	return mapError("add board user", err)
}

// GetBoardUsers returns member ids in join order
func (r *BoardRepository) GetBoardUsers(ctx context.Context, boardID string) ([]string, error) {
	ids := []string{}
	query := `SELECT user_id FROM board_users WHERE board_id = ? ORDER BY joined_at, rowid`
	if err := r.db.SelectContext(ctx, &ids, query, boardID); err != nil {
		return nil, mapError("list board users", err)
	}
	return ids, nil
}
