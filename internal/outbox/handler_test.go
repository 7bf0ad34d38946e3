package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snapfeed/snapfeed/internal/domain/events"
	domainoutbox "github.com/snapfeed/snapfeed/internal/domain/outbox"
	"github.com/snapfeed/snapfeed/internal/obs/retry"
)

type fakePublisher struct {
	got  []events.FollowEvent
	errs []error
}

func (f *fakePublisher) PublishFollowEvent(_ context.Context, ev events.FollowEvent) error {
	f.got = append(f.got, ev)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func noRetry() retry.Policy {
	return retry.Policy{Name: "test", Attempts: 1}
}

func TestGlobalHandler_DispatchesFollowEvent(t *testing.T) {
	pub := &fakePublisher{}
	dispatch := MakeGlobalOutboxHandler(pub, noRetry())

	h, err := dispatch(domainoutbox.KindFollowEvent)
	require.NoError(t, err)

	ev := events.FollowEvent{
		Kind:     events.NewFollower,
		ActorID:  1,
		TargetID: 2,
		At:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, h(context.Background(), data))
	require.Len(t, pub.got, 1)
	require.Equal(t, ev, pub.got[0])
}

func TestGlobalHandler_UnknownKind(t *testing.T) {
	dispatch := MakeGlobalOutboxHandler(&fakePublisher{}, noRetry())

	_, err := dispatch(domainoutbox.Kind(99))
	require.Error(t, err)
}

func TestGlobalHandler_BadPayload(t *testing.T) {
	pub := &fakePublisher{}
	dispatch := MakeGlobalOutboxHandler(pub, noRetry())

	h, err := dispatch(domainoutbox.KindFollowEvent)
	require.NoError(t, err)

	require.Error(t, h(context.Background(), []byte("{not json")))
	require.Empty(t, pub.got)
}

func TestGlobalHandler_RetriesPublish(t *testing.T) {
	pub := &fakePublisher{errs: []error{errors.New("broker hiccup")}}
	pol := retry.Policy{
		Name:     "test",
		Attempts: 2,
		Backoff:  retry.ExpoJitter{Base: time.Millisecond},
	}
	dispatch := MakeGlobalOutboxHandler(pub, pol)

	h, err := dispatch(domainoutbox.KindFollowEvent)
	require.NoError(t, err)

	data, _ := json.Marshal(events.FollowEvent{Kind: events.FollowRequested, ActorID: 1, TargetID: 2})
	require.NoError(t, h(context.Background(), data))
	require.Len(t, pub.got, 2)
}
