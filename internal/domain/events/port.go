package events

import "context"

type FollowEvents interface {
	PublishFollowEvent(ctx context.Context, ev FollowEvent) error
}
