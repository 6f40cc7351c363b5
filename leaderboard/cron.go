package leaderboard

import (
	"context"
	"log/slog"
	"time"
)

const (
	defRefreshInterval = 10 * time.Minute
	defRestartInterval = 30 * time.Minute
)

// Cron drives the periodic background jobs: snapshot refresh on one ticker
// and a full service restart on another. Both are plain lifecycle tasks so
// they can be started and stopped independently of request handling.
type Cron struct {
	svc             Service
	logger          *slog.Logger
	refreshInterval time.Duration
	restartInterval time.Duration
	restart         func()
	stopChan        chan struct{}
}

func NewCron(svc Service, logger *slog.Logger, refreshInterval, restartInterval time.Duration, restart func()) *Cron {
	if refreshInterval <= 0 {
		refreshInterval = defRefreshInterval
	}
	if restartInterval <= 0 {
		restartInterval = defRestartInterval
	}

	return &Cron{
		svc:             svc,
		logger:          logger,
		refreshInterval: refreshInterval,
		restartInterval: restartInterval,
		restart:         restart,
		stopChan:        make(chan struct{}),
	}
}

func (c *Cron) Start(ctx context.Context) error {
	refresh := time.NewTicker(c.refreshInterval)
	defer refresh.Stop()
	restart := time.NewTicker(c.restartInterval)
	defer restart.Stop()

	c.logger.Info("leaderboard cron started",
		slog.Duration("refresh_interval", c.refreshInterval),
		slog.Duration("restart_interval", c.restartInterval))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("leaderboard cron stopping")

			return ctx.Err()
		case <-c.stopChan:
			c.logger.Info("leaderboard cron stopped")

			return nil
		case <-refresh.C:
			if err := c.svc.Refresh(ctx); err != nil {
				c.logger.Error("scheduled refresh failed", slog.String("error", err.Error()))
			}
		case <-restart.C:
			if c.restart != nil {
				c.logger.Info("scheduled service restart")
				c.restart()
			}
		}
	}
}

func (c *Cron) Stop() {
	close(c.stopChan)
}
