package kafka

import (
	"context"

	"github.com/snapfeed/snapfeed/internal/domain/events"
)

type FollowEventsKafka struct {
	p *Producer
}

func NewFollowEventsKafka(p *Producer) *FollowEventsKafka { return &FollowEventsKafka{p: p} }

var _ events.FollowEvents = (*FollowEventsKafka)(nil)

// Messages are keyed by the push recipient so one user's events stay
// ordered within a partition.
func (e *FollowEventsKafka) PublishFollowEvent(ctx context.Context, ev events.FollowEvent) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(ev.TargetID), ev)
}
