package sweeper

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	config "github.com/snapfeed/snapfeed/internal/config/sweeper"
)

type Runner struct {
	Log *zap.Logger
	UC  *Usecase
	Cfg *config.SweepCfg

	mSessions prometheus.Counter
	mRequests prometheus.Counter
	mErr      prometheus.Counter
	mLoopDur  prometheus.Histogram
}

func New(log *zap.Logger, uc *Usecase, cfg *config.SweepCfg) *Runner {
	return &Runner{
		Log: log,
		UC:  uc,
		Cfg: cfg,
		mSessions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sweeper_sessions_deactivated_total", Help: "Expired sessions deactivated",
		}),
		mRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sweeper_requests_pruned_total", Help: "Rejected follow requests pruned",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sweeper_errors_total", Help: "Errors in sweep loop",
		}),
		mLoopDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "sweeper_loop_duration_seconds", Help: "Sweep tick duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	sessions, requests, err := r.UC.Tick(ctx, r.Cfg.SessionBatch, r.Cfg.RetentionDays)
	if err != nil {
		r.mErr.Inc()
		r.Log.Warn("tick error", zap.Error(err))
	}
	if sessions > 0 || requests > 0 {
		r.mSessions.Add(float64(sessions))
		r.mRequests.Add(float64(requests))
		r.Log.Debug("swept batch",
			zap.Int64("sessions", sessions),
			zap.Int64("requests", requests))
	}
	r.mLoopDur.Observe(time.Since(start).Seconds())
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Cfg.Tick)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
