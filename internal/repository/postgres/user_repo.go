package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/snapfeed/snapfeed/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (username, email, password_hash, bio, profile_image_url, private)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, username, email, password_hash, bio, profile_image_url, private, created_at, updated_at;`

	qUserByID = `
SELECT id, username, email, password_hash, bio, profile_image_url, private, created_at, updated_at
FROM users
WHERE id = $1;`

	qUserByUsername = `
SELECT id, username, email, password_hash, bio, profile_image_url, private, created_at, updated_at
FROM users
WHERE username = $1;`

	qUserByEmail = `
SELECT id, username, email, password_hash, bio, profile_image_url, private, created_at, updated_at
FROM users
WHERE email = $1;`

	qUserUpdateProfile = `
UPDATE users
SET bio               = $2,
    profile_image_url = $3,
    private           = $4,
    updated_at        = NOW()
WHERE id = $1
RETURNING id, username, email, password_hash, bio, profile_image_url, private, created_at, updated_at;`
)

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserInsert,
		u.Username, u.Email, u.Password, u.Bio, u.ProfileImageURL, u.Private), u); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByID, id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByUsername, username), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByEmail, email), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserUpdateProfile,
		u.ID, u.Bio, u.ProfileImageURL, u.Private), u); err != nil {
		return fmt.Errorf("user update profile: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row, out *user.User) error {
	if err := row.Scan(
		&out.ID, &out.Username, &out.Email, &out.Password,
		&out.Bio, &out.ProfileImageURL, &out.Private,
		&out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan user: %w", err)
	}
	return nil
}
