package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/docchat/pkg/log"
)

// SessionRepo stores session-scoped key/value entries.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	query := `SELECT value FROM session_state WHERE session_id = ? AND key = ?`

	var value string
	err := r.db.QueryRowContext(ctx, query, sessionID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session state: %w", err)
	}
	return value, true, nil
}

// Set overwrites any previous value; the last writer wins.
func (r *SessionRepo) Set(ctx context.Context, sessionID, key, value string) error {
	query := `INSERT INTO session_state (session_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, sessionID, key, value); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("session", sessionID).Str("key", key).Msg("session state updated")
	return nil
}

func (r *SessionRepo) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_state WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}
