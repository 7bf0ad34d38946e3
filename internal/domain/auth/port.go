package auth

import "context"

type SessionRepo interface {
	Create(ctx context.Context, s *Session) error
	InvalidateAll(ctx context.Context, userID int64) error
	ListActivePushTokens(ctx context.Context, userID int64) ([]string, error)
	DeactivateExpired(ctx context.Context, limit int) (int64, error)
}
