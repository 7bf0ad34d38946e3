package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/snapfeed/snapfeed/internal/domain/auth"
	"github.com/snapfeed/snapfeed/internal/domain/user"
	"github.com/snapfeed/snapfeed/internal/repository/postgres"
)

type fakeUsers struct {
	byID       map[int64]*user.User
	byUsername map[string]*user.User
	nextID     int64
	getErr     error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*user.User{}, byUsername: map[string]*user.User{}, nextID: 1}
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	if _, ok := f.byUsername[u.Username]; ok {
		return postgres.ErrConflict
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.byID[u.ID] = &cp
	f.byUsername[u.Username] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byUsername[username]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (f *fakeUsers) UpdateProfile(_ context.Context, u *user.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return postgres.ErrNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	f.byUsername[u.Username] = &cp
	return nil
}

type fakeSessions struct {
	rows   []*domainauth.Session
	nextID int64
}

func (f *fakeSessions) Create(_ context.Context, s *domainauth.Session) error {
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeSessions) InvalidateAll(_ context.Context, userID int64) error {
	for _, s := range f.rows {
		if s.UserID == userID {
			s.Active = false
		}
	}
	return nil
}

func (f *fakeSessions) ListActivePushTokens(_ context.Context, userID int64) ([]string, error) {
	var out []string
	for _, s := range f.rows {
		if s.UserID == userID && s.Active && s.PushToken != "" {
			out = append(out, s.PushToken)
		}
	}
	return out, nil
}

func (f *fakeSessions) DeactivateExpired(_ context.Context, _ int) (int64, error) { return 0, nil }

func newAuthUC(t *testing.T) (*Usecase, *fakeUsers, *fakeSessions) {
	t.Helper()
	users := newFakeUsers()
	sessions := &fakeSessions{}
	uc := NewUseCase(users, sessions, Config{
		Secret:    testSecret,
		AccessTTL: time.Hour,
	})
	return uc, users, sessions
}

func TestSignUp_IssuesTokenAndSession(t *testing.T) {
	uc, users, sessions := newAuthUC(t)
	ctx := context.Background()

	u, tok, err := uc.SignUp(ctx, "Alice", "Alice@Example.com", "password123", SessionMeta{
		Device: "ios", PushToken: "apns-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "alice@example.com", u.Email)

	// password stored hashed, never verbatim
	stored := users.byUsername["alice"]
	require.NotEqual(t, "password123", stored.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")))

	require.Len(t, sessions.rows, 1)
	sess := sessions.rows[0]
	require.Equal(t, u.ID, sess.UserID)
	require.Equal(t, HashToken(tok), sess.TokenHash)
	require.Equal(t, "apns-1", sess.PushToken)
	require.True(t, sess.Active)

	uid, err := uc.ParseAccess(tok)
	require.NoError(t, err)
	require.Equal(t, u.ID, uid)
}

func TestSignUp_WeakPassword(t *testing.T) {
	uc, _, _ := newAuthUC(t)

	_, _, err := uc.SignUp(context.Background(), "bob", "bob@example.com", "short", SessionMeta{})
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestSignUp_DuplicateUsername(t *testing.T) {
	uc, _, _ := newAuthUC(t)
	ctx := context.Background()

	_, _, err := uc.SignUp(ctx, "bob", "bob@example.com", "password123", SessionMeta{})
	require.NoError(t, err)

	_, _, err = uc.SignUp(ctx, "bob", "bob2@example.com", "password123", SessionMeta{})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestSignIn(t *testing.T) {
	uc, _, sessions := newAuthUC(t)
	ctx := context.Background()

	_, _, err := uc.SignUp(ctx, "carol", "carol@example.com", "password123", SessionMeta{})
	require.NoError(t, err)

	u, tok, err := uc.SignIn(ctx, "carol", "password123", SessionMeta{Device: "web"})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, "carol", u.Username)
	require.Len(t, sessions.rows, 2)

	_, _, err = uc.SignIn(ctx, "carol", "wrongpass", SessionMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = uc.SignIn(ctx, "nobody", "password123", SessionMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_StorageErrorIsNotCredentialFailure(t *testing.T) {
	uc, users, _ := newAuthUC(t)
	ctx := context.Background()

	_, _, err := uc.SignUp(ctx, "erin", "erin@example.com", "password123", SessionMeta{})
	require.NoError(t, err)

	boom := errors.New("connection refused")
	users.getErr = boom

	_, _, err = uc.SignIn(ctx, "erin", "password123", SessionMeta{})
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_DeactivatesSessionsButTokenSurvives(t *testing.T) {
	uc, _, sessions := newAuthUC(t)
	ctx := context.Background()

	u, tok, err := uc.SignUp(ctx, "dave", "dave@example.com", "password123", SessionMeta{PushToken: "tok"})
	require.NoError(t, err)

	require.NoError(t, uc.Logout(ctx, u.ID))
	for _, s := range sessions.rows {
		require.False(t, s.Active)
	}
	tokens, err := sessions.ListActivePushTokens(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, tokens)

	// verification is stateless: the token stays valid until expiry
	uid, err := uc.ParseAccess(tok)
	require.NoError(t, err)
	require.Equal(t, u.ID, uid)
}

func TestParseAccess_RejectsGarbage(t *testing.T) {
	uc, _, _ := newAuthUC(t)

	_, err := uc.ParseAccess("not.a.token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
