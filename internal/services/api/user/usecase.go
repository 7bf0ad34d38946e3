package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	domainfollow "github.com/snapfeed/snapfeed/internal/domain/follow"
	domainuser "github.com/snapfeed/snapfeed/internal/domain/user"
	"github.com/snapfeed/snapfeed/internal/kv"
)

// Profile is a user plus the counters every profile screen shows.
type Profile struct {
	User      *domainuser.User `json:"user"`
	Followers int64            `json:"followers"`
	Following int64            `json:"following"`
}

type Presence struct {
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen,omitempty"`
}

type Config struct {
	// PresenceTTL is how long a heartbeat keeps a user online.
	PresenceTTL time.Duration
	Now         func() time.Time
}

type Usecase struct {
	users   domainuser.Repo
	follows domainfollow.Repo
	kv      kv.Store
	cfg     Config
}

func NewUseCase(users domainuser.Repo, follows domainfollow.Repo, store kv.Store, cfg Config) *Usecase {
	if cfg.PresenceTTL <= 0 {
		cfg.PresenceTTL = 2 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{users: users, follows: follows, kv: store, cfg: cfg}
}

func (u *Usecase) Get(ctx context.Context, id int64) (*Profile, error) {
	rec, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	followers, following, err := u.follows.Counts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{User: rec, Followers: followers, Following: following}, nil
}

// ProfilePatch carries only the fields the owner may change; nil means
// leave as is.
type ProfilePatch struct {
	Bio             *string
	ProfileImageURL *string
	Private         *bool
}

func (u *Usecase) UpdateProfile(ctx context.Context, userID int64, patch ProfilePatch) (*domainuser.User, error) {
	rec, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.Bio != nil {
		rec.Bio = *patch.Bio
	}
	if patch.ProfileImageURL != nil {
		rec.ProfileImageURL = *patch.ProfileImageURL
	}
	if patch.Private != nil {
		rec.Private = *patch.Private
	}
	rec.UpdatedAt = u.cfg.Now()
	if err := u.users.UpdateProfile(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func presenceKey(userID int64) string {
	return "presence:" + strconv.FormatInt(userID, 10)
}

// Heartbeat refreshes the caller's online marker.
func (u *Usecase) Heartbeat(ctx context.Context, userID int64) error {
	ts := u.cfg.Now().Format(time.RFC3339)
	if err := u.kv.Set(presenceKey(userID), ts, u.cfg.PresenceTTL); err != nil {
		return fmt.Errorf("presence set: %w", err)
	}
	return nil
}

// Presence reports whether the user heartbeated within the TTL window.
// An expired key means offline with no last-seen; the marker carries
// the time of the latest heartbeat.
func (u *Usecase) Presence(ctx context.Context, userID int64) (*Presence, error) {
	v, err := u.kv.Get(presenceKey(userID))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return &Presence{Online: false}, nil
		}
		return nil, fmt.Errorf("presence get: %w", err)
	}
	last, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return &Presence{Online: true}, nil
	}
	return &Presence{Online: true, LastSeen: last}, nil
}
