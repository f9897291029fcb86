package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/selfbot/internal/core"
)

type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// TouchSession creates the session on first use and bumps updated_at on
// every later call. The title only sticks on creation.
func (r *SessionRepo) TouchSession(ctx context.Context, sessionID string, ownerID *int64, title string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, owner_id, title) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP`,
		sessionID, ownerID, title,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session %s: %w", sessionID, err)
	}
	return nil
}

func (r *SessionRepo) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content) VALUES (?, ?, ?)`,
		sessionID, role, content,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to bump session: %w", err)
	}

	return tx.Commit()
}

func (r *SessionRepo) ListMessages(ctx context.Context, sessionID string) ([]core.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []core.ChatMessage
	for rows.Next() {
		var m core.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *SessionRepo) ListSessions(ctx context.Context, ownerID *int64) ([]core.ChatSession, error) {
	query := `SELECT id, owner_id, title, created_at, updated_at FROM chat_sessions`
	var args []any
	if ownerID != nil {
		query += " WHERE owner_id = ?"
		args = append(args, *ownerID)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.ChatSession
	for rows.Next() {
		var s core.ChatSession
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) RenameSession(ctx context.Context, sessionID, title string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chat_sessions SET title = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteSession removes the session and, via the cascade, its messages.
func (r *SessionRepo) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
