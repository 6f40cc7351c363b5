package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
	pkgerrors "github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/errors"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/record"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/submission"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/vote"
)

const defSnapshotTTL = 10 * time.Minute

// PendingEntry is a queued submission annotated with its community vote tally.
type PendingEntry struct {
	queue.Entry
	Votes int `json:"votes"`
}

// QueueView is the evaluation queue split into display buckets.
type QueueView struct {
	Finished []queue.Entry  `json:"finished"`
	Running  []queue.Entry  `json:"running"`
	Pending  []PendingEntry `json:"pending"`
}

type Service interface {
	// Leaderboard returns the current table with the query's search, filters
	// and column selection applied. Readers get a consistent snapshot that is
	// at most one TTL old.
	Leaderboard(ctx context.Context, q Query) (Table, error)

	// EvalQueue returns the evaluation queue, pending entries ranked by votes.
	EvalQueue(ctx context.Context) (QueueView, error)

	// Submit validates a submission, persists its request file and casts the
	// submitter's implicit vote.
	Submit(ctx context.Context, req submission.Request) (queue.Entry, error)

	// Vote records one community vote for a queued model and returns the
	// updated tally.
	Vote(ctx context.Context, m, username string) (int, error)

	// Refresh rebuilds the leaderboard snapshot from remote storage.
	Refresh(ctx context.Context) error
}

// snapshot is one consistently built leaderboard state. It is swapped in
// atomically, never mutated in place.
type snapshot struct {
	table   Table
	idx     *queue.Index
	builtAt time.Time
}

type service struct {
	remote         record.Store
	cache          record.Store
	votes          *vote.Ledger
	agg            *Aggregator
	classifier     *Classifier
	flagger        *FlaggingEngine
	validator      *submission.Validator
	registry       registry.Registry
	cfg            config.Config
	resultsPrefix  string
	requestsPrefix string
	ttl            time.Duration
	restart        func()
	logger         *slog.Logger

	mu        sync.RWMutex
	snap      *snapshot
	refreshMu sync.Mutex
}

// Options carries the service wiring that varies per deployment.
type Options struct {
	ResultsPrefix  string
	RequestsPrefix string
	SnapshotTTL    time.Duration
	// Restart escalates a failed refresh to the process supervisor. Optional.
	Restart func()
}

func NewService(remote, cache record.Store, votes *vote.Ledger, reg registry.Registry, cfg config.Config, opts Options, logger *slog.Logger) Service {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defSnapshotTTL
	}
	limiter := submission.NewRateLimiter(submission.DefWindowDays, submission.DefQuota, cfg.Submitters)

	return &service{
		remote:         remote,
		cache:          cache,
		votes:          votes,
		agg:            NewAggregator(cache, reg, cfg, logger),
		classifier:     NewClassifier(cfg.Classifier),
		flagger:        NewFlaggingEngine(cfg.Models),
		validator:      submission.NewValidator(reg, limiter, cfg.Models),
		registry:       reg,
		cfg:            cfg,
		resultsPrefix:  opts.ResultsPrefix,
		requestsPrefix: opts.RequestsPrefix,
		ttl:            opts.SnapshotTTL,
		restart:        opts.Restart,
		logger:         logger,
	}
}

func (svc *service) Leaderboard(ctx context.Context, q Query) (Table, error) {
	snap, err := svc.current(ctx)
	if err != nil {
		return Table{}, err
	}

	return snap.table.Apply(q), nil
}

func (svc *service) EvalQueue(ctx context.Context) (QueueView, error) {
	snap, err := svc.current(ctx)
	if err != nil {
		return QueueView{}, err
	}

	var view QueueView
	for _, e := range snap.idx.Entries {
		switch e.Status.Bucket() {
		case queue.BucketFinished:
			view.Finished = append(view.Finished, e)
		case queue.BucketRunning:
			view.Running = append(view.Running, e)
		default:
			view.Pending = append(view.Pending, PendingEntry{
				Entry: e,
				Votes: svc.votes.Count(e.Model, e.Revision),
			})
		}
	}

	sort.SliceStable(view.Pending, func(i, j int) bool {
		if view.Pending[i].Votes != view.Pending[j].Votes {
			return view.Pending[i].Votes > view.Pending[j].Votes
		}

		return view.Pending[i].Model < view.Pending[j].Model
	})
	sortEntries(view.Finished)
	sortEntries(view.Running)

	return view, nil
}

func sortEntries(entries []queue.Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Model < entries[j].Model })
}

func (svc *service) Submit(ctx context.Context, req submission.Request) (queue.Entry, error) {
	// Duplicate and rate-limit checks run against the authoritative remote
	// queue, not the cached snapshot.
	idx, err := queue.Load(ctx, svc.remote, svc.requestsPrefix, svc.logger)
	if err != nil {
		return queue.Entry{}, err
	}

	entry, err := svc.validator.Validate(ctx, req, idx, time.Now())
	if err != nil {
		return queue.Entry{}, err
	}

	p := path.Join(svc.requestsPrefix, entry.FilePath())
	if err := svc.remote.WriteJSON(ctx, p, entry); err != nil {
		return queue.Entry{}, err
	}

	if _, err := svc.votes.Add(entry.Model, entry.Revision, req.Sender, time.Now()); err != nil && !errors.Is(err, pkgerrors.ErrAlreadyVoted) {
		svc.logger.Warn("implicit vote failed", slog.String("model", entry.Model), slog.Any("error", err))
	}

	svc.invalidate()

	return entry, nil
}

func (svc *service) Vote(ctx context.Context, m, username string) (int, error) {
	if username == "" {
		return 0, pkgerrors.ErrEmptyKey
	}

	snap, err := svc.current(ctx)
	if err != nil {
		return 0, err
	}

	revision := "main"
	if entry, ok := snap.idx.FindModel(m); ok && entry.Revision != "" {
		revision = entry.Revision
	}

	return svc.votes.Add(m, revision, username, time.Now())
}

// Refresh mirrors the remote datasets into the local cache and rebuilds the
// snapshot. A failed mirror escalates to the restart hook: serving from a
// partial cache is worse than restarting.
func (svc *service) Refresh(ctx context.Context) error {
	svc.refreshMu.Lock()
	defer svc.refreshMu.Unlock()

	if err := record.Snapshot(ctx, svc.remote, svc.cache, svc.resultsPrefix); err != nil {
		svc.escalate(err)

		return err
	}
	if err := record.Snapshot(ctx, svc.remote, svc.cache, svc.requestsPrefix); err != nil {
		svc.escalate(err)

		return err
	}

	idx, err := queue.Load(ctx, svc.cache, svc.requestsPrefix, svc.logger)
	if err != nil {
		return err
	}

	results, err := svc.agg.Aggregate(ctx, svc.resultsPrefix, idx)
	if err != nil {
		return err
	}

	rows := make([]Row, 0, len(results))
	for _, res := range results {
		rows = append(rows, svc.buildRow(ctx, res))
	}
	table := Build(svc.flagger.Apply(rows), svc.cfg)

	svc.mu.Lock()
	svc.snap = &snapshot{table: table, idx: idx, builtAt: time.Now()}
	svc.mu.Unlock()

	svc.logger.Info("leaderboard snapshot rebuilt",
		slog.Int("rows", len(table.Rows)),
		slog.Int("queue_entries", len(idx.Entries)))

	return nil
}

func (svc *service) buildRow(ctx context.Context, res model.EvalResult) Row {
	var cardPtr *registry.Card
	if card, err := svc.registry.GetCard(ctx, res.FullModel); err == nil {
		cardPtr = &card
		switch {
		case card.License != "":
			res.License = card.License
		case card.LicenseName != "":
			res.License = card.LicenseName
		}
	}

	typ, tags := svc.classifier.Classify(res.FullModel, res.ModelType.String(), cardPtr)
	res.ModelType = typ

	return Row{
		EvalResult: res,
		Average:    res.Average(),
		Tags:       tags,
		Merged:     hasTag(tags, TagMerge),
		MoE:        hasTag(tags, TagMoE),
	}
}

// current returns the live snapshot, rebuilding it when missing or older than
// the TTL. A failed rebuild falls back to the stale snapshot when one exists.
func (svc *service) current(ctx context.Context) (*snapshot, error) {
	svc.mu.RLock()
	snap := svc.snap
	svc.mu.RUnlock()

	if snap != nil && time.Since(snap.builtAt) < svc.ttl {
		return snap, nil
	}

	if err := svc.Refresh(ctx); err != nil {
		if snap != nil {
			svc.logger.Warn("serving stale snapshot after failed refresh", slog.Any("error", err))

			return snap, nil
		}

		return nil, err
	}

	svc.mu.RLock()
	defer svc.mu.RUnlock()

	return svc.snap, nil
}

func (svc *service) invalidate() {
	svc.mu.Lock()
	svc.snap = nil
	svc.mu.Unlock()
}

func (svc *service) escalate(err error) {
	svc.logger.Error("dataset snapshot failed", slog.Any("error", err))
	if svc.restart != nil {
		svc.restart()
	}
}
