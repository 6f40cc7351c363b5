package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/submission"
)

// Service is a mock implementation of the leaderboard.Service interface.
type Service struct {
	mock.Mock
}

var _ leaderboard.Service = (*Service)(nil)

func (m *Service) Leaderboard(ctx context.Context, q leaderboard.Query) (leaderboard.Table, error) {
	args := m.Called(ctx, q)

	return args.Get(0).(leaderboard.Table), args.Error(1)
}

func (m *Service) EvalQueue(ctx context.Context) (leaderboard.QueueView, error) {
	args := m.Called(ctx)

	return args.Get(0).(leaderboard.QueueView), args.Error(1)
}

func (m *Service) Submit(ctx context.Context, req submission.Request) (queue.Entry, error) {
	args := m.Called(ctx, req)

	return args.Get(0).(queue.Entry), args.Error(1)
}

func (m *Service) Vote(ctx context.Context, model, username string) (int, error) {
	args := m.Called(ctx, model, username)

	return args.Int(0), args.Error(1)
}

func (m *Service) Refresh(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
