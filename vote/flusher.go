package vote

import (
	"context"
	"log/slog"
	"time"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/record"
)

const defaultFlushInterval = 15 * time.Minute

// Flusher periodically persists accumulated votes to the durable log and
// publishes the log to the remote store. It runs independently of request
// handling; a failed tick leaves the pending buffer intact for the next one.
type Flusher struct {
	ledger   *Ledger
	remote   record.Store
	logger   *slog.Logger
	interval time.Duration
	stopChan chan struct{}
}

// NewFlusher wires the ledger to its flush loop. A nil remote keeps the log
// local, which is the single-store setup used in tests.
func NewFlusher(ledger *Ledger, remote record.Store, logger *slog.Logger, interval time.Duration) *Flusher {
	if interval <= 0 {
		interval = defaultFlushInterval
	}

	return &Flusher{
		ledger:   ledger,
		remote:   remote,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (f *Flusher) Start(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("vote flusher started", slog.Duration("interval", f.interval))

	for {
		select {
		case <-ctx.Done():
			f.flush(ctx)

			return ctx.Err()
		case <-f.stopChan:
			f.flush(context.WithoutCancel(ctx))
			f.logger.Info("vote flusher stopped")

			return nil
		case <-ticker.C:
			f.flush(ctx)
		}
	}
}

func (f *Flusher) Stop() {
	close(f.stopChan)
}

func (f *Flusher) flush(ctx context.Context) {
	if f.ledger.Pending() == 0 {
		return
	}
	if err := f.ledger.Flush(ctx); err != nil {
		f.logger.Error("vote flush failed, keeping pending buffer", slog.Any("error", err))

		return
	}
	f.logger.Info("flushed pending votes")

	if f.remote == nil {
		return
	}
	if err := f.ledger.Sync(ctx, f.remote); err != nil {
		f.logger.Error("vote log upload failed", slog.Any("error", err))
	}
}
