package events

import "time"

type FollowEventKind string

const (
	FollowRequested FollowEventKind = "follow_requested"
	NewFollower     FollowEventKind = "new_follower"
	RequestAccepted FollowEventKind = "request_accepted"
)

// FollowEvent is the wire payload published on the follow-events topic.
// ActorID performed the action, TargetID receives the push.
type FollowEvent struct {
	Kind      FollowEventKind `json:"kind"`
	ActorID   int64           `json:"actor_id"`
	TargetID  int64           `json:"target_id"`
	RequestID int64           `json:"request_id,omitempty"`
	At        time.Time       `json:"at"`
}
