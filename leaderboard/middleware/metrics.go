package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/submission"
)

var _ leaderboard.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     leaderboard.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc leaderboard.Service) leaderboard.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Leaderboard(ctx context.Context, q leaderboard.Query) (leaderboard.Table, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-leaderboard").Add(1)
		mm.latency.With("method", "get-leaderboard").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Leaderboard(ctx, q)
}

func (mm *metricsMiddleware) EvalQueue(ctx context.Context) (leaderboard.QueueView, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-eval-queue").Add(1)
		mm.latency.With("method", "get-eval-queue").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.EvalQueue(ctx)
}

func (mm *metricsMiddleware) Submit(ctx context.Context, req submission.Request) (queue.Entry, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "submit-model").Add(1)
		mm.latency.With("method", "submit-model").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Submit(ctx, req)
}

func (mm *metricsMiddleware) Vote(ctx context.Context, m, username string) (int, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "vote").Add(1)
		mm.latency.With("method", "vote").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Vote(ctx, m, username)
}

func (mm *metricsMiddleware) Refresh(ctx context.Context) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "refresh-snapshot").Add(1)
		mm.latency.With("method", "refresh-snapshot").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Refresh(ctx)
}
