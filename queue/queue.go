package queue

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/record"
)

// Status is the lifecycle state of an evaluation request. It is written once
// by the submission flow and advanced externally by the evaluation runner.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusRerun          Status = "RERUN"
	StatusRunning        Status = "RUNNING"
	StatusFinished       Status = "FINISHED"
	StatusPendingNewEval Status = "PENDING_NEW_EVAL"
)

// Bucket groups statuses for display: pending, running and finished queues.
type Bucket string

const (
	BucketPending  Bucket = "pending"
	BucketRunning  Bucket = "running"
	BucketFinished Bucket = "finished"
)

func (s Status) Bucket() Bucket {
	switch s {
	case StatusRunning:
		return BucketRunning
	case StatusFinished, StatusPendingNewEval:
		return BucketFinished
	default:
		return BucketPending
	}
}

// Entry is one submission's lifecycle record, persisted as a request file.
type Entry struct {
	Model           string           `json:"model"`
	BaseModel       string           `json:"base_model"`
	Revision        string           `json:"revision"`
	Precision       model.Precision  `json:"precision"`
	Params          float64          `json:"params"`
	Architectures   string           `json:"architectures"`
	WeightType      model.WeightType `json:"weight_type"`
	Status          Status           `json:"status"`
	SubmittedTime   string           `json:"submitted_time"`
	ModelType       string           `json:"model_type"`
	JobID           string           `json:"job_id"`
	JobStartTime    *string          `json:"job_start_time"`
	UseChatTemplate bool             `json:"use_chat_template"`
	Sender          string           `json:"sender"`
}

// Key identifies an entry for duplicate detection: (model, revision, precision).
func (e Entry) Key() string {
	return fmt.Sprintf("%s_%s_%s", e.Model, e.Revision, e.Precision)
}

// FilePath is the request-file naming convention,
// {org}/{model}_eval_request_False_{precision}_{weight_type}.json.
func (e Entry) FilePath() string {
	org, name := model.SplitModelID(e.Model)

	return path.Join(org, fmt.Sprintf("%s_eval_request_False_%s_%s.json", name, e.Precision, e.WeightType))
}

// Index is the in-memory view of all existing request files, used for
// duplicate detection, rate limiting and result cross-referencing.
type Index struct {
	Entries []Entry

	keys            map[string]struct{}
	submissionDates map[string][]time.Time
}

// Load reads every request file under prefix from the store. Unreadable files
// are logged and skipped; a single bad record never fails the whole index.
func Load(ctx context.Context, store record.Store, prefix string, logger *slog.Logger) (*Index, error) {
	paths, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing request files: %w", err)
	}

	idx := &Index{
		keys:            make(map[string]struct{}),
		submissionDates: make(map[string][]time.Time),
	}
	for _, p := range paths {
		if !strings.HasSuffix(p, ".json") {
			continue
		}
		var e Entry
		if err := store.ReadJSON(ctx, p, &e); err != nil {
			logger.Warn("skipping unreadable request file", slog.String("path", p), slog.Any("error", err))

			continue
		}
		idx.add(e)
	}

	return idx, nil
}

func (i *Index) add(e Entry) {
	i.Entries = append(i.Entries, e)
	i.keys[e.Key()] = struct{}{}

	org, _ := model.SplitModelID(e.Model)
	if org == "" || e.SubmittedTime == "" {
		return
	}
	if t, err := time.Parse(model.TimeLayout, e.SubmittedTime); err == nil {
		i.submissionDates[org] = append(i.submissionDates[org], t)
	}
}

// Has reports whether an identical (model, revision, precision) submission
// already exists.
func (i *Index) Has(m, revision string, precision model.Precision) bool {
	_, ok := i.keys[Entry{Model: m, Revision: revision, Precision: precision}.Key()]

	return ok
}

// SubmissionDates returns the submission timestamps recorded for an
// organization, for rate-limit checks.
func (i *Index) SubmissionDates(org string) []time.Time {
	return i.submissionDates[org]
}

// FindModel returns an entry for the model regardless of precision, used to
// resolve the revision a vote attaches to. Pending entries are preferred.
func (i *Index) FindModel(fullModel string) (Entry, bool) {
	var found Entry
	var ok bool
	for _, e := range i.Entries {
		if e.Model != fullModel {
			continue
		}
		if e.Status.Bucket() == BucketPending {
			return e, true
		}
		if !ok {
			found, ok = e, true
		}
	}

	return found, ok
}

// Find returns the entry matching full model and precision. A revision match
// is preferred when several entries share the pair.
func (i *Index) Find(fullModel string, precision model.Precision, revision string) (Entry, bool) {
	var found Entry
	var ok bool
	for _, e := range i.Entries {
		if e.Model != fullModel || e.Precision != precision {
			continue
		}
		if e.Revision == revision {
			return e, true
		}
		if !ok {
			found, ok = e, true
		}
	}

	return found, ok
}
