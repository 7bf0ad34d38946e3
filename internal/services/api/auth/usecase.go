package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/snapfeed/snapfeed/internal/domain/auth"
	"github.com/snapfeed/snapfeed/internal/domain/user"
	"github.com/snapfeed/snapfeed/internal/repository/postgres"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already registered")
	ErrWeakPassword       = errors.New("password is too weak")
)

type Config struct {
	Secret    []byte
	AccessTTL time.Duration
	Now       func() time.Time
}

// SessionMeta is what the transport layer knows about the caller's
// device; stored alongside the session for push delivery.
type SessionMeta struct {
	Device    string
	IP        string
	PushToken string
}

type Usecase struct {
	users    user.Repo
	sessions domainauth.SessionRepo
	cfg      Config
}

func NewUseCase(users user.Repo, sessions domainauth.SessionRepo, cfg Config) *Usecase {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{users: users, sessions: sessions, cfg: cfg}
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (u *Usecase) SignUp(ctx context.Context, username, email, password string, meta SessionMeta) (*user.User, string, error) {
	username = normalizeUsername(username)
	email = normalizeEmail(email)
	if len(password) < 8 {
		return nil, "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	now := u.cfg.Now()
	newUser := &user.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, postgres.ErrConflict) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}
	access, err := u.Issue(ctx, newUser.ID, meta)
	if err != nil {
		return nil, "", err
	}
	return newUser, access, nil
}

func (u *Usecase) SignIn(ctx context.Context, username, password string, meta SessionMeta) (*user.User, string, error) {
	username = normalizeUsername(username)
	uRec, err := u.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(uRec.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	access, err := u.Issue(ctx, uRec.ID, meta)
	if err != nil {
		return nil, "", err
	}
	return uRec, access, nil
}

// Issue signs an access token and records a session carrying its hash.
func (u *Usecase) Issue(ctx context.Context, userID int64, meta SessionMeta) (string, error) {
	now := u.cfg.Now()
	claims := domainauth.AccessClaims{
		Sub: strconv.FormatInt(userID, 10),
		Iat: now.Unix(),
		Exp: now.Add(u.cfg.AccessTTL).Unix(),
	}
	access, err := SignedString(claims, u.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign access: %w", err)
	}
	sess := &domainauth.Session{
		UserID:    userID,
		TokenHash: HashToken(access),
		Device:    meta.Device,
		IP:        meta.IP,
		PushToken: meta.PushToken,
		IssuedAt:  now,
		ExpiresAt: now.Add(u.cfg.AccessTTL),
		Active:    true,
	}
	if err := u.sessions.Create(ctx, sess); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return access, nil
}

// Logout deactivates every session of the user. Already-issued tokens
// stay verifiable until they expire; verification is stateless.
func (u *Usecase) Logout(ctx context.Context, userID int64) error {
	return u.sessions.InvalidateAll(ctx, userID)
}

func (u *Usecase) Me(ctx context.Context, userID int64) (*user.User, error) {
	return u.users.GetByID(ctx, userID)
}

func (u *Usecase) ParseAccess(token string) (int64, error) {
	cl, err := ParseAndValidate(token, u.cfg.Secret, u.cfg.Now())
	if err != nil {
		return 0, ErrTokenInvalid
	}
	id, err := strconv.ParseInt(cl.Sub, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return id, nil
}
