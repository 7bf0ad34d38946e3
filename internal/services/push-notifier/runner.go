package pushnotifier

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/snapfeed/snapfeed/internal/domain/events"
	kafkax "github.com/snapfeed/snapfeed/internal/repository/kafka"
)

type Runner struct {
	log  *zap.Logger
	cons *kafkax.Consumer
	uc   *Handler

	mConsumed prometheus.Counter
	mSent     prometheus.Counter
	mFailed   prometheus.Counter
	mErrors   prometheus.Counter
}

func NewRunner(log *zap.Logger, cons *kafkax.Consumer, uc *Handler) *Runner {
	return &Runner{
		log:  log,
		cons: cons,
		uc:   uc,
		mConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_notifier_events_consumed_total",
			Help: "Follow events consumed",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_notifier_pushes_sent_total",
			Help: "Pushes delivered",
		}),
		mFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_notifier_pushes_failed_total",
			Help: "Pushes that the gateway rejected (not retried)",
		}),
		mErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "push_notifier_errors_total",
			Help: "Errors",
		}),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(
		func(ctx context.Context, _ []byte, ev *events.FollowEvent) error {
			r.mConsumed.Inc()
			if ev.ActorID <= 0 || ev.TargetID <= 0 {
				r.log.Warn("invalid follow event",
					zap.Int64("actor_id", ev.ActorID),
					zap.Int64("target_id", ev.TargetID))
				return nil
			}
			sent, failed, err := r.uc.HandleFollowEvent(ctx, ev)
			r.mSent.Add(float64(sent))
			r.mFailed.Add(float64(failed))
			if err != nil {
				r.mErrors.Inc()
			}
			return err
		},
	)

	if err := r.cons.Consume(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		r.mErrors.Inc()
		r.log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return ctx.Err()
}
