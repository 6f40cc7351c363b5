package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/submission"
)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    leaderboard.Service
}

func Logging(logger *slog.Logger, svc leaderboard.Service) leaderboard.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Leaderboard(ctx context.Context, q leaderboard.Query) (resp leaderboard.Table, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("query",
				slog.String("search", q.Search),
				slog.Int("types", len(q.Types)),
				slog.Int("precisions", len(q.Precisions)),
				slog.Int("sizes", len(q.Sizes)),
			),
			slog.Int("rows", len(resp.Rows)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get leaderboard failed", args...)

			return
		}
		lm.logger.Info("Get leaderboard completed successfully", args...)
	}(time.Now())

	return lm.svc.Leaderboard(ctx, q)
}

func (lm *loggingMiddleware) EvalQueue(ctx context.Context) (resp leaderboard.QueueView, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("pending", len(resp.Pending)),
			slog.Int("running", len(resp.Running)),
			slog.Int("finished", len(resp.Finished)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get eval queue failed", args...)

			return
		}
		lm.logger.Info("Get eval queue completed successfully", args...)
	}(time.Now())

	return lm.svc.EvalQueue(ctx)
}

func (lm *loggingMiddleware) Submit(ctx context.Context, req submission.Request) (resp queue.Entry, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("submission",
				slog.String("model", req.Model),
				slog.String("precision", string(req.Precision)),
				slog.String("weight_type", string(req.WeightType)),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			if _, ok := submission.IsRejection(err); ok {
				lm.logger.Info("Submit model rejected", args...)
			} else {
				lm.logger.Warn("Submit model failed", args...)
			}

			return
		}
		lm.logger.Info("Submit model completed successfully", args...)
	}(time.Now())

	return lm.svc.Submit(ctx, req)
}

func (lm *loggingMiddleware) Vote(ctx context.Context, m, username string) (count int, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("model", m),
			slog.Int("count", count),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Vote failed", args...)

			return
		}
		lm.logger.Info("Vote completed successfully", args...)
	}(time.Now())

	return lm.svc.Vote(ctx, m, username)
}

func (lm *loggingMiddleware) Refresh(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Refresh snapshot failed", args...)

			return
		}
		lm.logger.Info("Refresh snapshot completed successfully", args...)
	}(time.Now())

	return lm.svc.Refresh(ctx)
}
