package follow

import (
	"time"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// Relationship is a directed follow edge, unique per ordered pair.
type Relationship struct {
	FollowerID int64     `json:"follower_id"`
	FolloweeID int64     `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Request is a pending ask to follow a private account. At most one row
// exists per (from, to) pair; re-requesting refreshes the same row back
// to pending instead of duplicating it.
type Request struct {
	ID         int64         `json:"id"`
	FromUserID int64         `json:"from_user_id"`
	ToUserID   int64         `json:"to_user_id"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// PendingRequest is the joined view returned to the request inbox.
type PendingRequest struct {
	ID                  int64
	FromUserID          int64
	FromUsername        string
	FromProfileImageURL string
	CreatedAt           time.Time
}
