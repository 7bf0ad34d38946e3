package follow

import (
	"context"

	"github.com/snapfeed/snapfeed/internal/domain/user"
)

type Repo interface {
	// CreateRelation inserts the edge; a duplicate is a silent no-op.
	CreateRelation(ctx context.Context, followerID, followeeID int64) error
	DeleteRelation(ctx context.Context, followerID, followeeID int64) error
	HasRelation(ctx context.Context, followerID, followeeID int64) (bool, error)

	// UpsertRequest creates the pending request for the pair, or refreshes
	// an existing row (whatever its status) back to pending.
	UpsertRequest(ctx context.Context, fromUserID, toUserID int64) (*Request, error)
	// SetStatusIfPending transitions the request matching (id, to) out of
	// pending. Returns ErrNotFound when no such pending row exists.
	SetStatusIfPending(ctx context.Context, id, toUserID int64, status RequestStatus) (*Request, error)
	DeletePendingBetween(ctx context.Context, fromUserID, toUserID int64) error
	GetRequest(ctx context.Context, fromUserID, toUserID int64) (*Request, error)

	ListPendingFor(ctx context.Context, toUserID int64, limit int) ([]*PendingRequest, error)
	ListFollowers(ctx context.Context, userID int64, limit int) ([]*user.Summary, error)
	ListFollowing(ctx context.Context, userID int64, limit int) ([]*user.Summary, error)
	Counts(ctx context.Context, userID int64) (followers, following int64, err error)

	DeleteRejectedOlderThan(ctx context.Context, retentionDays int) (int64, error)
}
