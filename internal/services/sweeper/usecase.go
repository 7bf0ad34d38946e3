package sweeper

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainauth "github.com/snapfeed/snapfeed/internal/domain/auth"
	domainfollow "github.com/snapfeed/snapfeed/internal/domain/follow"
)

type Usecase struct {
	Sessions domainauth.SessionRepo
	Follows  domainfollow.Repo
}

func NewUC(sessions domainauth.SessionRepo, follows domainfollow.Repo) *Usecase {
	return &Usecase{Sessions: sessions, Follows: follows}
}

// Tick deactivates sessions whose tokens have expired and prunes
// rejected follow requests older than the retention window.
func (u *Usecase) Tick(ctx context.Context, sessionBatch, retentionDays int) (sessions, requests int64, err error) {
	if sessionBatch <= 0 {
		sessionBatch = 500
	}

	tr := otel.Tracer("sweeper.uc")
	ctxTick, span := tr.Start(ctx, "sweeper.tick",
		trace.WithAttributes(
			attribute.Int("sessions.batch", sessionBatch),
			attribute.Int("requests.retention_days", retentionDays),
		),
	)
	defer span.End()

	sessions, err = u.Sessions.DeactivateExpired(ctxTick, sessionBatch)
	if err != nil {
		span.RecordError(err)
		return 0, 0, fmt.Errorf("deactivate sessions: %w", err)
	}

	requests, err = u.Follows.DeleteRejectedOlderThan(ctxTick, retentionDays)
	if err != nil {
		span.RecordError(err)
		return sessions, 0, fmt.Errorf("prune rejected requests: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("sessions.deactivated", sessions),
		attribute.Int64("requests.pruned", requests),
	)
	return sessions, requests, nil
}
