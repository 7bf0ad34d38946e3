package repo

import (
	"context"

	domainauth "github.com/snapfeed/snapfeed/internal/domain/auth"
	"github.com/snapfeed/snapfeed/internal/domain/user"
)

// UserReader exposes only the fields push texts need.
type UserReader struct{ R user.Repo }

// TokenReader lists the live device tokens of one user.
type TokenReader struct{ R domainauth.SessionRepo }

func (a UserReader) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := a.R.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user.User{ID: u.ID, Username: u.Username}, nil
}

func (a TokenReader) ActiveTokens(ctx context.Context, userID int64) ([]string, error) {
	return a.R.ListActivePushTokens(ctx, userID)
}
