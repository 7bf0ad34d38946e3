package postgres

import (
	"context"
	"fmt"

	"github.com/snapfeed/snapfeed/internal/domain/auth"
)

var _ auth.SessionRepo = (*SessionRepo)(nil)

type SessionRepo struct{ db *DB }

func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

const (
	qSessionCreate = `
INSERT INTO sessions (user_id, token_hash, device, ip, push_token, issued_at, expires_at, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
RETURNING id;`

	qSessionInvalidateAll = `
UPDATE sessions SET active = FALSE WHERE user_id = $1 AND active;`

	qSessionPushTokens = `
SELECT DISTINCT push_token
FROM sessions
WHERE user_id = $1 AND active AND expires_at > NOW() AND push_token <> '';`

	// Expired rows are deactivated, never deleted; the table is the audit
	// trail of token issuance.
	qSessionDeactivateExpired = `
UPDATE sessions SET active = FALSE
WHERE id IN (
    SELECT id FROM sessions
    WHERE active AND expires_at <= NOW()
    LIMIT $1
);`
)

func (r *SessionRepo) Create(ctx context.Context, s *auth.Session) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qSessionCreate,
		s.UserID, s.TokenHash, s.Device, s.IP, s.PushToken, s.IssuedAt, s.ExpiresAt,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("session insert: %w", err)
	}
	return nil
}

func (r *SessionRepo) InvalidateAll(ctx context.Context, userID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qSessionInvalidateAll, userID); err != nil {
		return fmt.Errorf("session invalidate all: %w", err)
	}
	return nil
}

func (r *SessionRepo) ListActivePushTokens(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qSessionPushTokens, userID)
	if err != nil {
		return nil, fmt.Errorf("query push tokens: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan push token: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SessionRepo) DeactivateExpired(ctx context.Context, limit int) (int64, error) {
	if limit <= 0 {
		limit = 500
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qSessionDeactivateExpired, limit)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
