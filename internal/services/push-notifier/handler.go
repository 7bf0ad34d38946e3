package pushnotifier

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/snapfeed/snapfeed/internal/domain/events"
	"github.com/snapfeed/snapfeed/internal/domain/notification"
	"github.com/snapfeed/snapfeed/internal/services/push-notifier/repo"
)

// Handler fans one follow event out to every live device of the target.
// Delivery is best effort: a failed token is logged and skipped, the
// event is never redelivered because of it.
type Handler struct {
	Users  repo.UserReader
	Tokens repo.TokenReader
	Out    notification.PushSender
	Log    *zap.Logger
}

func (h *Handler) HandleFollowEvent(ctx context.Context, ev *events.FollowEvent) (sent, failed int, err error) {
	actor, err := h.Users.GetByID(ctx, ev.ActorID)
	if err != nil {
		return 0, 0, fmt.Errorf("get actor: %w", err)
	}

	tokens, err := h.Tokens.ActiveTokens(ctx, ev.TargetID)
	if err != nil {
		return 0, 0, fmt.Errorf("list push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return 0, 0, nil
	}

	title, body := pushText(ev.Kind, actor.Username)
	data := map[string]string{
		"kind":    string(ev.Kind),
		"actorId": strconv.FormatInt(ev.ActorID, 10),
	}
	if ev.RequestID != 0 {
		data["requestId"] = strconv.FormatInt(ev.RequestID, 10)
	}

	for _, tok := range tokens {
		if err := h.Out.Send(ctx, tok, title, body, data); err != nil {
			failed++
			h.Log.Warn("push send failed",
				zap.Int64("target_id", ev.TargetID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, failed, nil
}

func pushText(kind events.FollowEventKind, actorUsername string) (title, body string) {
	switch kind {
	case events.FollowRequested:
		return "Follow request", actorUsername + " wants to follow you"
	case events.NewFollower:
		return "New follower", actorUsername + " started following you"
	case events.RequestAccepted:
		return "Request accepted", actorUsername + " accepted your follow request"
	default:
		return "Snapfeed", "You have a new notification"
	}
}
