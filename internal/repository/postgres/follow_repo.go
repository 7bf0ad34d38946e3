package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/snapfeed/snapfeed/internal/domain/follow"
	"github.com/snapfeed/snapfeed/internal/domain/user"
)

var _ follow.Repo = (*FollowRepo)(nil)

type FollowRepo struct{ db *DB }

func NewFollowRepo(db *DB) *FollowRepo { return &FollowRepo{db: db} }

const (
	// Uniqueness of the edge is the primary key; a second follow of the
	// same pair is a silent no-op.
	qRelInsert = `
INSERT INTO follows (follower_id, followee_id)
VALUES ($1, $2)
ON CONFLICT (follower_id, followee_id) DO NOTHING;`

	qRelDelete = `
DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2;`

	qRelExists = `
SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2);`

	// One row per ordered pair; re-requesting refreshes any previous
	// outcome back to pending.
	qReqUpsert = `
INSERT INTO follow_requests (from_user_id, to_user_id, status)
VALUES ($1, $2, 'pending')
ON CONFLICT (from_user_id, to_user_id)
DO UPDATE SET status = 'pending', updated_at = NOW()
RETURNING id, from_user_id, to_user_id, status, created_at, updated_at;`

	qReqSetStatus = `
UPDATE follow_requests
SET status = $3, updated_at = NOW()
WHERE id = $1 AND to_user_id = $2 AND status = 'pending'
RETURNING id, from_user_id, to_user_id, status, created_at, updated_at;`

	qReqDeletePending = `
DELETE FROM follow_requests
WHERE from_user_id = $1 AND to_user_id = $2 AND status = 'pending';`

	qReqGet = `
SELECT id, from_user_id, to_user_id, status, created_at, updated_at
FROM follow_requests
WHERE from_user_id = $1 AND to_user_id = $2;`

	qReqListPending = `
SELECT r.id, r.from_user_id, u.username, u.profile_image_url, r.created_at
FROM follow_requests r
JOIN users u ON u.id = r.from_user_id
WHERE r.to_user_id = $1 AND r.status = 'pending'
ORDER BY r.created_at DESC
LIMIT $2;`

	qListFollowers = `
SELECT u.id, u.username, u.profile_image_url
FROM follows f
JOIN users u ON u.id = f.follower_id
WHERE f.followee_id = $1
ORDER BY f.created_at DESC
LIMIT $2;`

	qListFollowing = `
SELECT u.id, u.username, u.profile_image_url
FROM follows f
JOIN users u ON u.id = f.followee_id
WHERE f.follower_id = $1
ORDER BY f.created_at DESC
LIMIT $2;`

	qCounts = `
SELECT
    (SELECT COUNT(*) FROM follows WHERE followee_id = $1),
    (SELECT COUNT(*) FROM follows WHERE follower_id = $1);`

	qReqDeleteRejected = `
DELETE FROM follow_requests
WHERE status = 'rejected' AND updated_at < NOW() - ($1 * INTERVAL '1 day');`
)

func (r *FollowRepo) CreateRelation(ctx context.Context, followerID, followeeID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if _, err := eq.Exec(ctx, qRelInsert, followerID, followeeID); err != nil {
		return fmt.Errorf("follow insert: %w", err)
	}
	return nil
}

func (r *FollowRepo) DeleteRelation(ctx context.Context, followerID, followeeID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if _, err := eq.Exec(ctx, qRelDelete, followerID, followeeID); err != nil {
		return fmt.Errorf("follow delete: %w", err)
	}
	return nil
}

func (r *FollowRepo) HasRelation(ctx context.Context, followerID, followeeID int64) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, qRelExists, followerID, followeeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("follow exists: %w", err)
	}
	return exists, nil
}

func (r *FollowRepo) UpsertRequest(ctx context.Context, fromUserID, toUserID int64) (*follow.Request, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	var req follow.Request
	if err := scanRequest(eq.QueryRow(ctx, qReqUpsert, fromUserID, toUserID), &req); err != nil {
		return nil, fmt.Errorf("request upsert: %w", err)
	}
	return &req, nil
}

func (r *FollowRepo) SetStatusIfPending(ctx context.Context, id, toUserID int64, status follow.RequestStatus) (*follow.Request, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	var req follow.Request
	if err := scanRequest(eq.QueryRow(ctx, qReqSetStatus, id, toUserID, status), &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("request set status: %w", err)
	}
	return &req, nil
}

func (r *FollowRepo) DeletePendingBetween(ctx context.Context, fromUserID, toUserID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	if _, err := eq.Exec(ctx, qReqDeletePending, fromUserID, toUserID); err != nil {
		return fmt.Errorf("request delete pending: %w", err)
	}
	return nil
}

func (r *FollowRepo) GetRequest(ctx context.Context, fromUserID, toUserID int64) (*follow.Request, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var req follow.Request
	if err := scanRequest(r.db.Pool.QueryRow(ctx, qReqGet, fromUserID, toUserID), &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("request get: %w", err)
	}
	return &req, nil
}

func (r *FollowRepo) ListPendingFor(ctx context.Context, toUserID int64, limit int) ([]*follow.PendingRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qReqListPending, toUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending requests: %w", err)
	}
	defer rows.Close()

	out := make([]*follow.PendingRequest, 0, limit)
	for rows.Next() {
		var p follow.PendingRequest
		if err := rows.Scan(&p.ID, &p.FromUserID, &p.FromUsername, &p.FromProfileImageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *FollowRepo) ListFollowers(ctx context.Context, userID int64, limit int) ([]*user.Summary, error) {
	return r.listSummaries(ctx, qListFollowers, userID, limit)
}

func (r *FollowRepo) ListFollowing(ctx context.Context, userID int64, limit int) ([]*user.Summary, error) {
	return r.listSummaries(ctx, qListFollowing, userID, limit)
}

func (r *FollowRepo) listSummaries(ctx context.Context, q string, userID int64, limit int) ([]*user.Summary, error) {
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query follow list: %w", err)
	}
	defer rows.Close()

	out := make([]*user.Summary, 0, limit)
	for rows.Next() {
		var s user.Summary
		if err := rows.Scan(&s.ID, &s.Username, &s.ProfileImageURL); err != nil {
			return nil, fmt.Errorf("scan follow list: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *FollowRepo) Counts(ctx context.Context, userID int64) (int64, int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var followers, following int64
	if err := r.db.Pool.QueryRow(ctx, qCounts, userID).Scan(&followers, &following); err != nil {
		return 0, 0, fmt.Errorf("follow counts: %w", err)
	}
	return followers, following, nil
}

func (r *FollowRepo) DeleteRejectedOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qReqDeleteRejected, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("delete rejected requests: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRequest(row pgx.Row, out *follow.Request) error {
	return row.Scan(&out.ID, &out.FromUserID, &out.ToUserID, &out.Status, &out.CreatedAt, &out.UpdatedAt)
}
