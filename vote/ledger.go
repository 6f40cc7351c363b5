// Package vote keeps the community vote ledger: an append-only JSON-lines log
// with in-memory deduplication and periodic flushing to durable storage.
package vote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	pkgerrors "github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/errors"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/record"
)

// Ledger is the single writer for votes. The check-set rebuilt from the
// persisted log at open time is the source of truth for "already voted";
// votes accumulate in a pending buffer until Flush confirms a durable write.
type Ledger struct {
	mu      sync.Mutex
	store   record.Store
	path    string
	logger  *slog.Logger
	seen    map[string]struct{}
	counts  map[string]int
	pending []model.Vote
}

// Open rebuilds the ledger state from the persisted log. Undecodable lines
// are logged and skipped.
func Open(ctx context.Context, store record.Store, path string, logger *slog.Logger) (*Ledger, error) {
	lines, err := store.ReadLines(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading vote ledger: %w", err)
	}

	l := &Ledger{
		store:  store,
		path:   path,
		logger: logger,
		seen:   make(map[string]struct{}),
		counts: make(map[string]int),
	}
	for _, line := range lines {
		var v model.Vote
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			logger.Warn("skipping undecodable vote line", slog.Any("error", err))

			continue
		}
		l.record(v)
	}

	return l, nil
}

func (l *Ledger) record(v model.Vote) {
	key := voterKey(v.Model, v.Revision, v.Username)
	if _, dup := l.seen[key]; dup {
		return
	}
	l.seen[key] = struct{}{}
	l.counts[tallyKey(v.Model, v.Revision)]++
}

// Add registers one vote and returns the updated tally for the
// (model, revision) pair. A repeat vote from the same identity returns
// ErrAlreadyVoted and leaves the ledger unchanged.
func (l *Ledger) Add(m, revision, username string, now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := voterKey(m, revision, username)
	if _, dup := l.seen[key]; dup {
		return 0, pkgerrors.ErrAlreadyVoted
	}

	v := model.Vote{
		Model:     m,
		Revision:  revision,
		Username:  username,
		Timestamp: model.FormatTime(now),
	}
	l.seen[key] = struct{}{}
	l.counts[tallyKey(m, revision)]++
	l.pending = append(l.pending, v)

	return l.counts[tallyKey(m, revision)], nil
}

// Flush appends the pending buffer to the durable log. The buffer is cleared
// only after every line is confirmed written, so a failed flush retries the
// remainder on the next tick. Votes are therefore persisted at least once.
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for len(l.pending) > 0 {
		v := l.pending[0]
		line, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding vote: %w", err)
		}
		if err := l.store.AppendLine(ctx, l.path, string(line)); err != nil {
			return fmt.Errorf("flushing votes: %w", err)
		}
		l.pending = l.pending[1:]
	}

	return nil
}

// Sync publishes the persisted log to the remote store under the same path,
// annotated with the running vote total. Ledgers whose store has no local
// file to hand over are skipped.
func (l *Ledger) Sync(ctx context.Context, remote record.Store) error {
	root := record.Root(l.store)
	if root == "" {
		return nil
	}

	l.mu.Lock()
	total := len(l.seen)
	l.mu.Unlock()

	msg := fmt.Sprintf("update vote log, %d votes recorded", total)
	local := filepath.Join(root, filepath.FromSlash(l.path))

	return remote.Upload(ctx, local, l.path, msg)
}

// Hydrate seeds an empty local log from the published remote copy, so a fresh
// deployment starts from the existing tallies. A local log that already has
// lines is left alone: every flush is followed by an upload, so the local
// copy is never behind the remote one.
func Hydrate(ctx context.Context, remote, local record.Store, path string) error {
	existing, err := local.ReadLines(ctx, path)
	if err != nil {
		return fmt.Errorf("reading local vote log: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	lines, err := remote.ReadLines(ctx, path)
	if err != nil {
		return fmt.Errorf("reading remote vote log: %w", err)
	}
	for _, line := range lines {
		if err := local.AppendLine(ctx, path, line); err != nil {
			return fmt.Errorf("seeding vote log: %w", err)
		}
	}

	return nil
}

// Count returns the tally for one (model, revision) pair.
func (l *Ledger) Count(m, revision string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.counts[tallyKey(m, revision)]
}

// CountsFor returns tallies keyed by "model|revision" for the given models,
// covering every revision the ledger has seen.
func (l *Ledger) CountsFor(models []string) map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	wanted := make(map[string]struct{}, len(models))
	for _, m := range models {
		wanted[m] = struct{}{}
	}

	out := make(map[string]int)
	for key, n := range l.counts {
		if _, ok := wanted[keyModel(key)]; ok {
			out[key] = n
		}
	}

	return out
}

// Pending returns how many votes await the next flush.
func (l *Ledger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.pending)
}

func voterKey(m, revision, username string) string {
	return m + "|" + revision + "|" + username
}

func tallyKey(m, revision string) string {
	return m + "|" + revision
}

func keyModel(tally string) string {
	for i := len(tally) - 1; i >= 0; i-- {
		if tally[i] == '|' {
			return tally[:i]
		}
	}

	return tally
}
