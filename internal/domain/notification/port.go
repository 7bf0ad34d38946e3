package notification

import "context"

type Repo interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Notification, error)
	// MarkRead flips the read flag on the recipient's own notification.
	MarkRead(ctx context.Context, id, userID int64) error
}
