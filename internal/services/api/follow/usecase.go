package follow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/snapfeed/snapfeed/internal/domain/events"
	domainfollow "github.com/snapfeed/snapfeed/internal/domain/follow"
	"github.com/snapfeed/snapfeed/internal/domain/notification"
	domainoutbox "github.com/snapfeed/snapfeed/internal/domain/outbox"
	"github.com/snapfeed/snapfeed/internal/domain/user"
	"github.com/snapfeed/snapfeed/internal/repository/postgres"
)

var (
	ErrSelfTarget    = errors.New("cannot target yourself")
	ErrBadAction     = errors.New("action must be accept or reject")
	ErrTargetMissing = errors.New("user not found")
)

// Relation is what a follow attempt (or a profile view) reports back.
type Relation string

const (
	RelationNone      Relation = "none"
	RelationPending   Relation = "pending"
	RelationFollowing Relation = "following"
)

type Usecase struct {
	users   user.Repo
	follows domainfollow.Repo
	notifs  notification.Repo
	outbox  domainoutbox.Repository
	tx      postgres.Transactor
	now     func() time.Time
}

func NewUseCase(
	users user.Repo,
	follows domainfollow.Repo,
	notifs notification.Repo,
	ob domainoutbox.Repository,
	tx postgres.Transactor,
) *Usecase {
	return &Usecase{
		users: users, follows: follows, notifs: notifs, outbox: ob, tx: tx,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock; tests only.
func (u *Usecase) WithNow(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Request asks to follow target. Public targets gain the edge
// immediately; private ones get a pending request. Repeating the call
// in any state is safe: an existing edge short-circuits, an existing
// request (whatever its status) is refreshed back to pending.
func (u *Usecase) Request(ctx context.Context, actorID, targetID int64) (Relation, error) {
	if actorID == targetID {
		return RelationNone, ErrSelfTarget
	}
	target, err := u.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return RelationNone, ErrTargetMissing
		}
		return RelationNone, err
	}

	following, err := u.follows.HasRelation(ctx, actorID, targetID)
	if err != nil {
		return RelationNone, err
	}
	if following {
		return RelationFollowing, nil
	}

	if target.Private {
		err := u.tx.WithTx(ctx, func(ctx context.Context) error {
			req, err := u.follows.UpsertRequest(ctx, actorID, targetID)
			if err != nil {
				return err
			}
			if err := u.notify(ctx, targetID, actorID, notification.TypeFollowRequest, &req.ID); err != nil {
				return err
			}
			return u.enqueue(ctx, events.FollowEvent{
				Kind: events.FollowRequested, ActorID: actorID, TargetID: targetID,
				RequestID: req.ID, At: u.now(),
			})
		})
		if err != nil {
			return RelationNone, err
		}
		return RelationPending, nil
	}

	err = u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.follows.CreateRelation(ctx, actorID, targetID); err != nil {
			return err
		}
		if err := u.notify(ctx, targetID, actorID, notification.TypeNewFollower, nil); err != nil {
			return err
		}
		return u.enqueue(ctx, events.FollowEvent{
			Kind: events.NewFollower, ActorID: actorID, TargetID: targetID, At: u.now(),
		})
	})
	if err != nil {
		return RelationNone, err
	}
	return RelationFollowing, nil
}

// Respond settles a pending request addressed to userID. Accept is
// atomic with edge creation; a request that is not pending (or not
// theirs) surfaces as not found either way.
func (u *Usecase) Respond(ctx context.Context, userID, requestID int64, action string) error {
	switch action {
	case "accept":
		return u.tx.WithTx(ctx, func(ctx context.Context) error {
			req, err := u.follows.SetStatusIfPending(ctx, requestID, userID, domainfollow.StatusAccepted)
			if err != nil {
				return err
			}
			if err := u.follows.CreateRelation(ctx, req.FromUserID, req.ToUserID); err != nil {
				return err
			}
			if err := u.notify(ctx, req.FromUserID, userID, notification.TypeRequestAccepted, &req.ID); err != nil {
				return err
			}
			return u.enqueue(ctx, events.FollowEvent{
				Kind: events.RequestAccepted, ActorID: userID, TargetID: req.FromUserID,
				RequestID: req.ID, At: u.now(),
			})
		})
	case "reject":
		_, err := u.follows.SetStatusIfPending(ctx, requestID, userID, domainfollow.StatusRejected)
		return err
	default:
		return ErrBadAction
	}
}

// Unfollow removes the edge and cancels any outstanding request.
// Absent state is fine; the call is idempotent.
func (u *Usecase) Unfollow(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return ErrSelfTarget
	}
	return u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.follows.DeleteRelation(ctx, actorID, targetID); err != nil {
			return err
		}
		return u.follows.DeletePendingBetween(ctx, actorID, targetID)
	})
}

// RelationFor reports the actor's standing towards target.
func (u *Usecase) RelationFor(ctx context.Context, actorID, targetID int64) (Relation, error) {
	following, err := u.follows.HasRelation(ctx, actorID, targetID)
	if err != nil {
		return RelationNone, err
	}
	if following {
		return RelationFollowing, nil
	}
	req, err := u.follows.GetRequest(ctx, actorID, targetID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return RelationNone, nil
		}
		return RelationNone, err
	}
	if req.Status == domainfollow.StatusPending {
		return RelationPending, nil
	}
	return RelationNone, nil
}

func (u *Usecase) ListRequests(ctx context.Context, userID int64, limit int) ([]*domainfollow.PendingRequest, error) {
	return u.follows.ListPendingFor(ctx, userID, limit)
}

func (u *Usecase) Followers(ctx context.Context, userID int64, limit int) ([]*user.Summary, error) {
	return u.follows.ListFollowers(ctx, userID, limit)
}

func (u *Usecase) Following(ctx context.Context, userID int64, limit int) ([]*user.Summary, error) {
	return u.follows.ListFollowing(ctx, userID, limit)
}

func (u *Usecase) notify(ctx context.Context, toUserID, actorID int64, typ notification.Type, requestID *int64) error {
	actor, err := u.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("load actor: %w", err)
	}
	title, body := notificationText(typ, actor.Username)
	return u.notifs.Create(ctx, &notification.Notification{
		UserID:    toUserID,
		ActorID:   actorID,
		Type:      typ,
		Title:     title,
		Body:      body,
		RequestID: requestID,
		CreatedAt: u.now(),
	})
}

func notificationText(typ notification.Type, actorUsername string) (title, body string) {
	switch typ {
	case notification.TypeFollowRequest:
		return "Follow request", actorUsername + " wants to follow you"
	case notification.TypeNewFollower:
		return "New follower", actorUsername + " started following you"
	case notification.TypeRequestAccepted:
		return "Request accepted", actorUsername + " accepted your follow request"
	default:
		return "", ""
	}
}

func (u *Usecase) enqueue(ctx context.Context, ev events.FollowEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal follow event: %w", err)
	}
	return u.outbox.Enqueue(ctx, uuid.NewString(), domainoutbox.KindFollowEvent, data)
}
