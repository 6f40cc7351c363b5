package leaderboard_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
	pkgerrors "github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/errors"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/record"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry/mocks"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeResult(t *testing.T, store record.Store, path string, modelName string, scores map[string]float64) {
	t.Helper()

	results := make(map[string]map[string]float64, len(scores))
	for bench, v := range scores {
		metric := "new_acc"
		switch bench {
		case "community|ifeval-fr|0":
			metric = "prompt_level_strict_acc"
		case "community|bac-fr|0":
			metric = "bac-fr-qem"
		}
		block := map[string]float64{metric: v}
		if metric == "prompt_level_strict_acc" {
			block["inst_level_strict_acc"] = v
		}
		results[bench] = block
	}

	payload := map[string]any{
		"config_general": map[string]any{
			"model_dtype": "bfloat16",
			"model_name":  modelName,
			"model_sha":   "main",
		},
		"results": results,
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, store.WriteJSON(context.Background(), path, json.RawMessage(data)))
}

func TestAggregate_LatestFilePerDateWins(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	dir := "results/org/model"
	writeResult(t, store, dir+"/results_2024-02-05T08-00-00.000000.json", "org/model",
		map[string]float64{"community|gpqa-fr|0": 0.25})
	writeResult(t, store, dir+"/results_2024-02-05T20-00-00.000000.json", "org/model",
		map[string]float64{"community|gpqa-fr|0": 1.0})

	agg := leaderboard.NewAggregator(store, nil, config.Default(), discard)
	results, err := agg.Aggregate(context.Background(), "results/", nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	// The morning file is discarded, only the evening score survives.
	assert.InDelta(t, 100.0, results[0].NormalizedResults["community|gpqa-fr|0"], 1e-9)
}

func TestAggregate_MergesAcrossDates(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	dir := "results/org/model"
	writeResult(t, store, dir+"/results_2024-02-05T10-00-00.000000.json", "org/model",
		map[string]float64{"community|gpqa-fr|0": 1.0})
	writeResult(t, store, dir+"/results_2024-02-06T10-00-00.000000.json", "org/model",
		map[string]float64{"community|bac-fr|0": 0.5})

	agg := leaderboard.NewAggregator(store, nil, config.Default(), discard)
	results, err := agg.Aggregate(context.Background(), "results/", nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Contains(t, results[0].NormalizedResults, "community|gpqa-fr|0")
	assert.Contains(t, results[0].NormalizedResults, "community|bac-fr|0")
	// Both files miss a benchmark, so the display flag stays off after merging.
	assert.False(t, results[0].Display)
}

func TestAggregate_DistinctPrecisionsStaySeparate(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	writeResult(t, store, "results/org/model/results_2024-02-05T10-00-00.000000.json", "org/model",
		map[string]float64{"community|gpqa-fr|0": 1.0})

	payload := map[string]any{
		"config_general": map[string]any{
			"model_dtype": "float16",
			"model_name":  "org/model",
		},
		"results": map[string]any{
			"community|gpqa-fr|0": map[string]any{"new_acc": 0.5},
		},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, store.WriteJSON(context.Background(), "results/org/model-fp16/results_2024-02-05T10-00-00.000000.json", json.RawMessage(data)))

	agg := leaderboard.NewAggregator(store, nil, config.Default(), discard)
	results, err := agg.Aggregate(context.Background(), "results/", nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.NotEqual(t, results[0].EvalName, results[1].EvalName)
}

func TestAggregate_UnparsableStampKeepsLexicallyLastFile(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	dir := "results/org/model"
	writeResult(t, store, dir+"/results_aaa.json", "org/model",
		map[string]float64{"community|gpqa-fr|0": 0.25})
	writeResult(t, store, dir+"/results_zzz.json", "org/model",
		map[string]float64{"community|gpqa-fr|0": 1.0})

	agg := leaderboard.NewAggregator(store, nil, config.Default(), discard)
	results, err := agg.Aggregate(context.Background(), "results/", nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.InDelta(t, 100.0, results[0].NormalizedResults["community|gpqa-fr|0"], 1e-9)
}

func TestAggregate_SkipsMalformedFiles(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	require.NoError(t, store.WriteJSON(context.Background(), "results/org/bad/results_2024-02-05T10-00-00.000000.json", json.RawMessage(`{"results": {}}`)))
	writeResult(t, store, "results/org/good/results_2024-02-05T10-00-00.000000.json", "org/good",
		map[string]float64{"community|gpqa-fr|0": 1.0})

	agg := leaderboard.NewAggregator(store, nil, config.Default(), discard)
	results, err := agg.Aggregate(context.Background(), "results/", nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "org/good", results[0].FullModel)
}

func TestAggregate_FolderMarkerFilters(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	writeResult(t, store, "results/details/org/model/results_2024-02-05T10-00-00.000000.json", "org/model",
		map[string]float64{"community|gpqa-fr|0": 1.0})
	writeResult(t, store, "results/other/org/model/results_2024-02-05T10-00-00.000000.json", "org/skipped",
		map[string]float64{"community|gpqa-fr|0": 1.0})

	cfg := config.Default()
	cfg.FolderMarker = "details"

	agg := leaderboard.NewAggregator(store, nil, cfg, discard)
	results, err := agg.Aggregate(context.Background(), "results/", nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "org/model", results[0].FullModel)
}

func TestAggregate_EnrichesFromQueueAndHub(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	writeResult(t, store, "results/org/model/results_2024-02-05T10-00-00.000000.json", "org/model",
		map[string]float64{"community|gpqa-fr|0": 1.0})

	idx := indexOf(t, queue.Entry{
		Model:      "org/model",
		Precision:  model.Bfloat16,
		Revision:   "main",
		ModelType:  "chat",
		WeightType: model.Original,
		Params:     7.2,
		Status:     queue.StatusFinished,
	})

	reg := new(mocks.Registry)
	reg.On("GetConfig", mock.Anything, "org/model", "main").
		Return(registry.ModelConfig{Architectures: []string{"LlamaForCausalLM"}}, nil)

	agg := leaderboard.NewAggregator(store, reg, config.Default(), discard)
	results, err := agg.Aggregate(context.Background(), "results/", idx)
	require.NoError(t, err)

	require.Len(t, results, 1)
	res := results[0]
	assert.Equal(t, model.Chat, res.ModelType)
	assert.Equal(t, model.Original, res.WeightType)
	assert.InDelta(t, 7.2, res.NumParams, 1e-9)
	assert.True(t, res.StillOnHub)
	assert.Equal(t, "LlamaForCausalLM", res.Architecture)
	reg.AssertExpectations(t)
}

func TestAggregate_GatedModelStaysOnHub(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	writeResult(t, store, "results/org/gated/results_2024-02-05T10-00-00.000000.json", "org/gated",
		map[string]float64{"community|gpqa-fr|0": 1.0})

	reg := new(mocks.Registry)
	reg.On("GetConfig", mock.Anything, "org/gated", "main").
		Return(registry.ModelConfig{}, registry.ErrGated)
	reg.On("GetSafetensorsMetadata", mock.Anything, "org/gated").
		Return(nil, pkgerrors.ErrNotFound)

	agg := leaderboard.NewAggregator(store, reg, config.Default(), discard)
	results, err := agg.Aggregate(context.Background(), "results/", nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].StillOnHub)
}

func TestAggregate_ParamsFromSafetensors(t *testing.T) {
	t.Parallel()

	store := record.NewInMemory()
	writeResult(t, store, "results/org/model/results_2024-02-05T10-00-00.000000.json", "org/model",
		map[string]float64{"community|gpqa-fr|0": 1.0})

	reg := new(mocks.Registry)
	reg.On("GetConfig", mock.Anything, "org/model", "main").
		Return(registry.ModelConfig{}, pkgerrors.ErrNotFound)
	reg.On("GetSafetensorsMetadata", mock.Anything, "org/model").
		Return(&registry.SafetensorsMetadata{Total: 7_240_000_000}, nil)

	agg := leaderboard.NewAggregator(store, reg, config.Default(), discard)
	results, err := agg.Aggregate(context.Background(), "results/", nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.InDelta(t, 7.24, results[0].NumParams, 1e-9)
	assert.False(t, results[0].StillOnHub)
}

func indexOf(t *testing.T, entries ...queue.Entry) *queue.Index {
	t.Helper()

	store := record.NewInMemory()
	for i, e := range entries {
		require.NoError(t, store.WriteJSON(context.Background(), fmt.Sprintf("requests/%d.json", i), e))
	}
	idx, err := queue.Load(context.Background(), store, "requests/", discard)
	require.NoError(t, err)

	return idx
}
