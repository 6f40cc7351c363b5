package queue_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/record"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func loadIndex(t *testing.T, entries ...queue.Entry) *queue.Index {
	t.Helper()

	store := record.NewInMemory()
	ctx := context.Background()
	for _, e := range entries {
		require.NoError(t, store.WriteJSON(ctx, "requests/"+e.FilePath(), e))
	}
	idx, err := queue.Load(ctx, store, "requests/", discard)
	require.NoError(t, err)

	return idx
}

func TestStatusBuckets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, queue.BucketPending, queue.StatusPending.Bucket())
	assert.Equal(t, queue.BucketPending, queue.StatusRerun.Bucket())
	assert.Equal(t, queue.BucketRunning, queue.StatusRunning.Bucket())
	assert.Equal(t, queue.BucketFinished, queue.StatusFinished.Bucket())
	assert.Equal(t, queue.BucketFinished, queue.StatusPendingNewEval.Bucket())
}

func TestEntryFilePath(t *testing.T) {
	t.Parallel()

	e := queue.Entry{
		Model:      "org/model-7b",
		Precision:  model.Bfloat16,
		WeightType: model.Original,
	}

	assert.Equal(t, "org/model-7b_eval_request_False_bfloat16_Original.json", e.FilePath())
}

func TestLoad_BuildsIndex(t *testing.T) {
	t.Parallel()

	idx := loadIndex(t,
		queue.Entry{Model: "org/a", Revision: "r1", Precision: model.Bfloat16, SubmittedTime: "2024-02-10T12:00:00Z"},
		queue.Entry{Model: "org/b", Revision: "r1", Precision: model.Float16, SubmittedTime: "2024-02-11T12:00:00Z"},
	)

	assert.Len(t, idx.Entries, 2)
	assert.True(t, idx.Has("org/a", "r1", model.Bfloat16))
	assert.False(t, idx.Has("org/a", "r1", model.Float16))
	assert.False(t, idx.Has("org/a", "r2", model.Bfloat16))

	dates := idx.SubmissionDates("org")
	assert.Len(t, dates, 2)
}

func TestLoad_SkipsUnreadableFiles(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	ctx := context.Background()
	require.NoError(t, store.WriteJSON(ctx, "requests/org/bad.json", json.RawMessage(`[1,2]`)))
	require.NoError(t, store.WriteJSON(ctx, "requests/org/good.json", queue.Entry{Model: "org/good"}))
	require.NoError(t, store.WriteJSON(ctx, "requests/org/readme.txt", json.RawMessage(`"x"`)))

	idx, err := queue.Load(ctx, store, "requests/", discard)
	require.NoError(t, err)

	require.Len(t, idx.Entries, 1)
	assert.Equal(t, "org/good", idx.Entries[0].Model)
}

func TestFind_PrefersRevisionMatch(t *testing.T) {
	t.Parallel()

	idx := loadIndex(t,
		queue.Entry{Model: "org/a", Revision: "r1", Precision: model.Bfloat16, WeightType: model.Original},
		queue.Entry{Model: "org/a", Revision: "r2", Precision: model.Bfloat16, WeightType: model.Delta},
	)

	e, ok := idx.Find("org/a", model.Bfloat16, "r2")
	require.True(t, ok)
	assert.Equal(t, model.Delta, e.WeightType)

	// An unknown revision still matches on (model, precision).
	_, ok = idx.Find("org/a", model.Bfloat16, "r9")
	assert.True(t, ok)

	_, ok = idx.Find("org/a", model.Float16, "r1")
	assert.False(t, ok)
}

func TestFindModel_PrefersPendingEntries(t *testing.T) {
	t.Parallel()

	idx := loadIndex(t,
		queue.Entry{Model: "org/a", Revision: "old", Precision: model.Float16, Status: queue.StatusFinished},
		queue.Entry{Model: "org/a", Revision: "new", Precision: model.Bfloat16, Status: queue.StatusPending},
	)

	e, ok := idx.FindModel("org/a")
	require.True(t, ok)
	assert.Equal(t, "new", e.Revision)

	_, ok = idx.FindModel("org/unknown")
	assert.False(t, ok)
}
