package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/ports"
)

type elementRow struct {
	ID        string         `db:"id"`
	BoardID   string         `db:"board_id"`
	Type      string         `db:"type"`
	PositionX float64        `db:"position_x"`
	PositionY float64        `db:"position_y"`
	Width     float64        `db:"width"`
	Height    float64        `db:"height"`
	Rotation  float64        `db:"rotation"`
	ZIndex    int            `db:"z_index"`
	Content   string         `db:"content"`
	CreatedBy string         `db:"created_by"`
	LockedBy  sql.NullString `db:"locked_by"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func newElementRow(rec ports.ElementRecord) elementRow {
	row := elementRow{
		ID:        rec.ID,
		BoardID:   rec.BoardID,
		Type:      rec.Type,
		PositionX: rec.PositionX,
		PositionY: rec.PositionY,
		Width:     rec.Width,
		Height:    rec.Height,
		Rotation:  rec.Rotation,
		ZIndex:    rec.ZIndex,
		Content:   string(rec.Content),
		CreatedBy: rec.CreatedBy,
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
	if rec.LockedBy != nil {
		row.LockedBy = sql.NullString{String: *rec.LockedBy, Valid: true}
	}
	return row
}

func (r elementRow) toRecord() ports.ElementRecord {
	rec := ports.ElementRecord{
		ID:        r.ID,
		BoardID:   r.BoardID,
		Type:      r.Type,
		PositionX: r.PositionX,
		PositionY: r.PositionY,
		Width:     r.Width,
		Height:    r.Height,
		Rotation:  r.Rotation,
		ZIndex:    r.ZIndex,
		Content:   json.RawMessage(r.Content),
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.LockedBy.Valid {
		lockedBy := r.LockedBy.String
		rec.LockedBy = &lockedBy
	}
	return rec
}

const elementColumns = `id, board_id, type, position_x, position_y, width, height, rotation, z_index,
	content, created_by, locked_by, created_at, updated_at`

// ElementRepository stores element records in SQLite
type ElementRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewElementRepository creates a new SQLite element repository
func NewElementRepository(db *sqlx.DB, logger *zap.Logger) *ElementRepository {
	return &ElementRepository{db: db, logger: logger}
}

// AddElement inserts a record
func (r *ElementRepository) AddElement(ctx context.Context, record ports.ElementRecord) error {
	query := `INSERT INTO board_elements (` + elementColumns + `)
	          VALUES (:id, :board_id, :type, :position_x, :position_y, :width, :height, :rotation, :z_index,
	                  :content, :created_by, :locked_by, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, newElementRow(record))
	return mapError("insert element", err)
}

// UpdateElement applies a patch, returning nil when the record is missing
func (r *ElementRepository) UpdateElement(ctx context.Context, id string, patch ports.ElementRecordPatch) (*ports.ElementRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, mapError("begin update element", err)
	}
	defer tx.Rollback()

	var row elementRow
	err = tx.GetContext(ctx, &row, `SELECT `+elementColumns+` FROM board_elements WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get element", err)
	}

	record := row.toRecord()
	record.Apply(patch)

	query := `UPDATE board_elements SET
	            type = :type, position_x = :position_x, position_y = :position_y,
	            width = :width, height = :height, rotation = :rotation, z_index = :z_index,
	            content = :content, locked_by = :locked_by, updated_at = :updated_at
	          WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, newElementRow(record)); err != nil {
		return nil, mapError("update element", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError("commit update element", err)
	}
	return &record, nil
}

// DeleteElement removes a record
func (r *ElementRepository) DeleteElement(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM board_elements WHERE id = ?`, id)
	if err != nil {
		return false, mapError("delete element", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// GetBoardElements returns a board's records ordered by zIndex
func (r *ElementRepository) GetBoardElements(ctx context.Context, boardID string) ([]ports.ElementRecord, error) {
	var rows []elementRow
	query := `SELECT ` + elementColumns + ` FROM board_elements WHERE board_id = ? ORDER BY z_index, created_at, id`
	if err := r.db.SelectContext(ctx, &rows, query, boardID); err != nil {
		return nil, mapError("list elements", err)
	}

	out := make([]ports.ElementRecord, len(rows))
	for i, row := range rows {
		out[i] = row.toRecord()
	}
	return out, nil
}

// DeleteBoardElements removes every record of a board
func (r *ElementRepository) DeleteBoardElements(ctx context.Context, boardID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM board_elements WHERE board_id = ?`, boardID)
	if err != nil {
		return mapError("delete board elements", err)
	}
	n, _ := result.RowsAffected()
	r.logger.Debug("Board elements deleted", zap.String("board_id", boardID), zap.Int64("count", n))
	return nil
}
