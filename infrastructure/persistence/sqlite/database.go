// Package sqlite implements the persistence ports on a SQLite database
// through sqlx.
package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS boards (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	kingdom_id  TEXT NOT NULL,
	created_by  TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_boards_kingdom ON boards (kingdom_id, updated_at);

CREATE TABLE IF NOT EXISTS board_elements (
	id         TEXT PRIMARY KEY,
	board_id   TEXT NOT NULL REFERENCES boards (id) ON DELETE CASCADE,
	type       TEXT NOT NULL,
	position_x REAL NOT NULL,
	position_y REAL NOT NULL,
	width      REAL NOT NULL,
	height     REAL NOT NULL,
	rotation   REAL NOT NULL DEFAULT 0,
	z_index    INTEGER NOT NULL,
	content    TEXT NOT NULL,
	created_by TEXT NOT NULL,
	locked_by  TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_board_elements_board ON board_elements (board_id, z_index);

CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	avatar      TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	last_active DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS board_users (
	board_id  TEXT NOT NULL REFERENCES boards (id) ON DELETE CASCADE,
	user_id   TEXT NOT NULL,
	joined_at DATETIME NOT NULL,
	PRIMARY KEY (board_id, user_id)
);
`

// Open connects to the database file at path and applies the schema
func Open(path string, logger *zap.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	logger.Info("SQLite database ready", zap.String("path", path))
	return db, nil
}

// mapError converts driver errors into AppErrors
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return pkgerrors.NewConflictError(op + ": constraint violated").WithCause(err)
	}
	return pkgerrors.NewDatabaseError(op, err)
}
