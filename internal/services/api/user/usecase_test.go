package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainfollow "github.com/snapfeed/snapfeed/internal/domain/follow"
	domainuser "github.com/snapfeed/snapfeed/internal/domain/user"
	"github.com/snapfeed/snapfeed/internal/kv"
	"github.com/snapfeed/snapfeed/internal/repository/postgres"
)

type memEntry struct {
	value   string
	expires time.Time
}

type memStore struct {
	m   map[string]memEntry
	now func() time.Time
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{m: map[string]memEntry{}, now: now}
}

func (s *memStore) Set(key, value string, exp time.Duration) error {
	e := memEntry{value: value}
	if exp > 0 {
		e.expires = s.now().Add(exp)
	}
	s.m[key] = e
	return nil
}

func (s *memStore) Get(key string) (string, error) {
	e, ok := s.m[key]
	if !ok || (!e.expires.IsZero() && s.now().After(e.expires)) {
		return "", kv.ErrKeyNotFound
	}
	return e.value, nil
}

func (s *memStore) Del(key string) error {
	delete(s.m, key)
	return nil
}

func (s *memStore) TTL(key string) (time.Duration, error) {
	e, ok := s.m[key]
	if !ok {
		return -1, nil
	}
	return e.expires.Sub(s.now()), nil
}

type stubUsers struct {
	byID map[int64]*domainuser.User
}

func (s *stubUsers) Create(_ context.Context, _ *domainuser.User) error { return nil }

func (s *stubUsers) GetByID(_ context.Context, id int64) (*domainuser.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUsers) GetByUsername(_ context.Context, _ string) (*domainuser.User, error) {
	return nil, postgres.ErrNotFound
}

func (s *stubUsers) GetByEmail(_ context.Context, _ string) (*domainuser.User, error) {
	return nil, postgres.ErrNotFound
}

func (s *stubUsers) UpdateProfile(_ context.Context, u *domainuser.User) error {
	if _, ok := s.byID[u.ID]; !ok {
		return postgres.ErrNotFound
	}
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

// stubFollows only answers Counts; nothing else is reached here.
type stubFollows struct {
	followers, following int64
}

func (s *stubFollows) Counts(_ context.Context, _ int64) (int64, int64, error) {
	return s.followers, s.following, nil
}

func (s *stubFollows) CreateRelation(_ context.Context, _, _ int64) error { return nil }
func (s *stubFollows) DeleteRelation(_ context.Context, _, _ int64) error { return nil }
func (s *stubFollows) HasRelation(_ context.Context, _, _ int64) (bool, error) {
	return false, nil
}
func (s *stubFollows) UpsertRequest(_ context.Context, _, _ int64) (*domainfollow.Request, error) {
	return nil, postgres.ErrNotFound
}
func (s *stubFollows) SetStatusIfPending(_ context.Context, _, _ int64, _ domainfollow.RequestStatus) (*domainfollow.Request, error) {
	return nil, postgres.ErrNotFound
}
func (s *stubFollows) DeletePendingBetween(_ context.Context, _, _ int64) error { return nil }
func (s *stubFollows) GetRequest(_ context.Context, _, _ int64) (*domainfollow.Request, error) {
	return nil, postgres.ErrNotFound
}
func (s *stubFollows) ListPendingFor(_ context.Context, _ int64, _ int) ([]*domainfollow.PendingRequest, error) {
	return nil, nil
}
func (s *stubFollows) ListFollowers(_ context.Context, _ int64, _ int) ([]*domainuser.Summary, error) {
	return nil, nil
}
func (s *stubFollows) ListFollowing(_ context.Context, _ int64, _ int) ([]*domainuser.Summary, error) {
	return nil, nil
}
func (s *stubFollows) DeleteRejectedOlderThan(_ context.Context, _ int) (int64, error) {
	return 0, nil
}

func newUserUC(t *testing.T, now *time.Time) (*Usecase, *stubUsers, *memStore) {
	t.Helper()
	users := &stubUsers{byID: map[int64]*domainuser.User{
		1: {ID: 1, Username: "alice", Bio: "hi"},
	}}
	clock := func() time.Time { return *now }
	store := newMemStore(clock)
	uc := NewUseCase(users, &stubFollows{followers: 3, following: 5}, store, Config{
		PresenceTTL: 2 * time.Minute,
		Now:         clock,
	})
	return uc, users, store
}

func TestGet_ProfileWithCounts(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	uc, _, _ := newUserUC(t, &now)

	p, err := uc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "alice", p.User.Username)
	require.EqualValues(t, 3, p.Followers)
	require.EqualValues(t, 5, p.Following)

	_, err = uc.Get(context.Background(), 2)
	require.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestUpdateProfile_PartialPatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	uc, users, _ := newUserUC(t, &now)

	private := true
	rec, err := uc.UpdateProfile(context.Background(), 1, ProfilePatch{Private: &private})
	require.NoError(t, err)
	require.True(t, rec.Private)
	require.Equal(t, "hi", rec.Bio) // untouched

	bio := "new bio"
	rec, err = uc.UpdateProfile(context.Background(), 1, ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	require.Equal(t, "new bio", rec.Bio)
	require.True(t, users.byID[1].Private) // previous patch persisted
}

func TestPresence_HeartbeatAndExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	uc, _, _ := newUserUC(t, &now)
	ctx := context.Background()

	p, err := uc.Presence(ctx, 1)
	require.NoError(t, err)
	require.False(t, p.Online)

	require.NoError(t, uc.Heartbeat(ctx, 1))

	p, err = uc.Presence(ctx, 1)
	require.NoError(t, err)
	require.True(t, p.Online)
	require.Equal(t, now, p.LastSeen)

	// one minute later, still within the TTL
	now = now.Add(time.Minute)
	p, err = uc.Presence(ctx, 1)
	require.NoError(t, err)
	require.True(t, p.Online)

	// past the TTL the marker expires
	now = now.Add(2 * time.Minute)
	p, err = uc.Presence(ctx, 1)
	require.NoError(t, err)
	require.False(t, p.Online)
}
