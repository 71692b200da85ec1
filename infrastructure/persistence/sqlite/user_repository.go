package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

type userRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Avatar     string    `db:"avatar"`
	CreatedAt  time.Time `db:"created_at"`
	LastActive time.Time `db:"last_active"`
}

func (r userRow) toEntity() (*entities.User, error) {
	var avatar valueobjects.Avatar
	if err := json.Unmarshal([]byte(r.Avatar), &avatar); err != nil {
		return nil, pkgerrors.NewDatabaseError("decode avatar", err)
	}
	return entities.ReconstructUser(r.ID, r.Name, avatar, r.CreatedAt, r.LastActive)
}

// UserRepository stores users in SQLite
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository creates a new SQLite user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// CreateUser inserts a user
func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	avatar, err := json.Marshal(user.Avatar())
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode avatar").WithCause(err)
	}
	row := userRow{
		ID:         user.ID(),
		Name:       user.Name(),
		Avatar:     string(avatar),
		CreatedAt:  user.CreatedAt().UTC(),
		LastActive: user.LastActive().UTC(),
	}
	_, err = r.db.NamedExecContext(ctx,
		`INSERT INTO users (id, name, avatar, created_at, last_active) VALUES (:id, :name, :avatar, :created_at, :last_active)`,
		row,
	)
	return mapError("insert user", err)
}

// GetUser retrieves a user by id
func (r *UserRepository) GetUser(ctx context.Context, id string) (*entities.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT id, name, avatar, created_at, last_active FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	if err != nil {
		return nil, mapError("get user", err)
	}
	return row.toEntity()
}

// GetAllUsers lists users, most recently active first
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*entities.User, error) {
	var rows []userRow
	query := `SELECT id, name, avatar, created_at, last_active FROM users ORDER BY last_active DESC, id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, mapError("list users", err)
	}

	out := make([]*entities.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// UpdateLastActive marks the user as active now
func (r *UserRepository) UpdateLastActive(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET last_active = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return mapError("update last active", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("user")
	}
	return nil
}

// DeleteUser removes a user
func (r *UserRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, mapError("delete user", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}
