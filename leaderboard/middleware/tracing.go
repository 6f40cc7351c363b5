package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/submission"
)

var _ leaderboard.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    leaderboard.Service
}

func Tracing(tracer trace.Tracer, svc leaderboard.Service) leaderboard.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Leaderboard(ctx context.Context, q leaderboard.Query) (leaderboard.Table, error) {
	ctx, span := tm.tracer.Start(ctx, "get-leaderboard", trace.WithAttributes(
		attribute.String("search", q.Search),
	))
	defer span.End()

	return tm.svc.Leaderboard(ctx, q)
}

func (tm *tracing) EvalQueue(ctx context.Context) (leaderboard.QueueView, error) {
	ctx, span := tm.tracer.Start(ctx, "get-eval-queue")
	defer span.End()

	return tm.svc.EvalQueue(ctx)
}

func (tm *tracing) Submit(ctx context.Context, req submission.Request) (queue.Entry, error) {
	ctx, span := tm.tracer.Start(ctx, "submit-model", trace.WithAttributes(
		attribute.String("model", req.Model),
		attribute.String("precision", string(req.Precision)),
	))
	defer span.End()

	return tm.svc.Submit(ctx, req)
}

func (tm *tracing) Vote(ctx context.Context, m, username string) (int, error) {
	ctx, span := tm.tracer.Start(ctx, "vote", trace.WithAttributes(
		attribute.String("model", m),
	))
	defer span.End()

	return tm.svc.Vote(ctx, m, username)
}

func (tm *tracing) Refresh(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "refresh-snapshot")
	defer span.End()

	return tm.svc.Refresh(ctx)
}
