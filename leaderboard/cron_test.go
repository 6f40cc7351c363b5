package leaderboard_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard/mocks"
)

func TestCron_PeriodicRefresh(t *testing.T) {
	t.Parallel()

	svc := new(mocks.Service)
	var calls atomic.Int32
	svc.On("Refresh", mock.Anything).Run(func(mock.Arguments) {
		calls.Add(1)
	}).Return(nil)

	c := leaderboard.NewCron(svc, discard, 10*time.Millisecond, time.Hour, nil)
	done := make(chan error, 1)
	go func() {
		done <- c.Start(context.Background())
	}()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	c.Stop()
	require.NoError(t, <-done)
}

func TestCron_RestartTick(t *testing.T) {
	t.Parallel()

	svc := new(mocks.Service)
	var restarts atomic.Int32

	c := leaderboard.NewCron(svc, discard, time.Hour, 10*time.Millisecond, func() {
		restarts.Add(1)
	})
	done := make(chan error, 1)
	go func() {
		done <- c.Start(context.Background())
	}()

	assert.Eventually(t, func() bool {
		return restarts.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	c.Stop()
	require.NoError(t, <-done)
}

func TestCron_ContextCancelStops(t *testing.T) {
	t.Parallel()

	c := leaderboard.NewCron(new(mocks.Service), discard, time.Hour, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx)
	}()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
