package notification

import (
	"context"
	"time"
)

type Type string

const (
	TypeFollowRequest   Type = "follow_request"
	TypeNewFollower     Type = "new_follower"
	TypeRequestAccepted Type = "request_accepted"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ActorID   int64     `json:"actor_id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	RequestID *int64    `json:"request_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// PushSender delivers one message to one device token. Best effort: the
// caller logs failures and moves on, nothing is rolled back or retried.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
