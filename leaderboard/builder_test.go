package leaderboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
)

func makeRow(fullModel string, average float64, opts ...func(*leaderboard.Row)) leaderboard.Row {
	org, name := model.SplitModelID(fullModel)
	scores := map[string]float64{
		"community|gpqa-fr|0":   average,
		"community|ifeval-fr|0": average,
		"community|bac-fr|0":    average,
	}
	row := leaderboard.Row{
		EvalResult: model.EvalResult{
			EvalName:          model.EvalName(fullModel, model.Bfloat16),
			FullModel:         fullModel,
			Org:               org,
			Model:             name,
			Revision:          "main",
			Results:           scores,
			NormalizedResults: scores,
			Precision:         model.Bfloat16,
			License:           "apache-2.0",
			StillOnHub:        true,
			NumParams:         7,
			Display:           true,
		},
		Average: average,
	}
	for _, opt := range opts {
		opt(&row)
	}

	return row
}

func buildTable(rows ...leaderboard.Row) leaderboard.Table {
	return leaderboard.Build(rows, config.Default())
}

func TestBuild_SortsByAverageDescending(t *testing.T) {
	t.Parallel()

	table := buildTable(
		makeRow("org/low", 10),
		makeRow("org/high", 90),
		makeRow("org/mid", 50),
	)

	var names []string
	for _, r := range table.Rows {
		names = append(names, r.FullModel)
	}
	assert.Equal(t, []string{"org/high", "org/mid", "org/low"}, names)
}

func TestBuild_TiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	table := buildTable(
		makeRow("org/zeta", 50),
		makeRow("org/alpha", 50),
		makeRow("org/top", 60),
	)

	var names []string
	for _, r := range table.Rows {
		names = append(names, r.FullModel)
	}
	assert.Equal(t, []string{"org/top", "org/zeta", "org/alpha"}, names)
}

func TestBuild_ExcludesRowsMissingMandatoryBenchmarks(t *testing.T) {
	t.Parallel()

	partial := makeRow("org/partial", 50)
	delete(partial.NormalizedResults, "community|bac-fr|0")
	hidden := makeRow("org/hidden", 60)
	hidden.Display = false

	table := buildTable(makeRow("org/full", 40), partial, hidden)

	assert.Len(t, table.Rows, 1)
	assert.Equal(t, "org/full", table.Rows[0].FullModel)
}

func TestSearch_NameClausesUnion(t *testing.T) {
	t.Parallel()

	table := buildTable(
		makeRow("org/mistral-7b", 50),
		makeRow("org/llama-7b", 40),
		makeRow("other/falcon", 30),
	)

	combined := table.Apply(leaderboard.Query{Search: "mistral; llama"})
	q1 := table.Apply(leaderboard.Query{Search: "mistral"})
	q2 := table.Apply(leaderboard.Query{Search: "llama"})

	assert.Len(t, combined.Rows, 2)
	assert.Len(t, q1.Rows, 1)
	assert.Len(t, q2.Rows, 1)

	// The union of the single-clause results equals the combined result.
	seen := make(map[string]bool)
	for _, r := range append(q1.Rows, q2.Rows...) {
		seen[r.EvalName] = true
	}
	for _, r := range combined.Rows {
		assert.True(t, seen[r.EvalName])
	}
}

func TestSearch_LicenseANDCombination(t *testing.T) {
	t.Parallel()

	mit := makeRow("org/modelA-v1", 50)
	mit.License = "MIT"
	apache := makeRow("org/modelA-v2", 40)
	apache.License = "Apache-2.0"

	table := buildTable(mit, apache)

	got := table.Apply(leaderboard.Query{Search: "modelA; license: MIT"})

	assert.Len(t, got.Rows, 1)
	assert.Equal(t, "org/modelA-v1", got.Rows[0].FullModel)
}

func TestSearch_LicenseOnly(t *testing.T) {
	t.Parallel()

	mit := makeRow("org/a", 50)
	mit.License = "MIT"
	apache := makeRow("org/b", 40)
	apache.License = "Apache-2.0"

	table := buildTable(mit, apache)

	got := table.Apply(leaderboard.Query{Search: "licence: apache"})

	assert.Len(t, got.Rows, 1)
	assert.Equal(t, "org/b", got.Rows[0].FullModel)
}

func TestSearch_NoMatchReturnsEmptyTableWithColumns(t *testing.T) {
	t.Parallel()

	table := buildTable(makeRow("org/a", 50))

	got := table.Apply(leaderboard.Query{Search: "nothing-matches-this"})

	assert.Empty(t, got.Rows)
	assert.Equal(t, table.Columns, got.Columns)
}

func TestSearch_EmptyQueryReturnsInputUnchanged(t *testing.T) {
	t.Parallel()

	table := buildTable(makeRow("org/a", 50), makeRow("org/b", 40))

	got := table.Apply(leaderboard.Query{Search: "  "})

	assert.Len(t, got.Rows, 2)
}

func TestFilter_Predicates(t *testing.T) {
	t.Parallel()

	chat := makeRow("org/chat", 50, func(r *leaderboard.Row) {
		r.ModelType = model.Chat
	})
	merged := makeRow("org/merged", 40, func(r *leaderboard.Row) {
		r.ModelType = model.Merge
		r.Merged = true
	})
	big := makeRow("org/big", 30, func(r *leaderboard.Row) {
		r.NumParams = 70
	})
	gone := makeRow("org/gone", 20, func(r *leaderboard.Row) {
		r.StillOnHub = false
	})
	flagged := makeRow("org/flagged", 10, func(r *leaderboard.Row) {
		r.Flagged = true
	})

	table := buildTable(chat, merged, big, gone, flagged)

	cases := []struct {
		desc  string
		query leaderboard.Query
		want  []string
	}{
		{
			desc:  "type symbol membership",
			query: leaderboard.Query{Types: []string{model.Chat.Symbol()}},
			want:  []string{"org/chat"},
		},
		{
			desc:  "size interval",
			query: leaderboard.Query{Sizes: []string{">60B"}},
			want:  []string{"org/big"},
		},
		{
			desc:  "size interval union",
			query: leaderboard.Query{Sizes: []string{"7B-13B", ">60B"}},
			want:  []string{"org/chat", "org/merged", "org/gone", "org/flagged", "org/big"},
		},
		{
			desc:  "hide toggles",
			query: leaderboard.Query{HideMerges: true, HideUnavailable: true, HideFlagged: true},
			want:  []string{"org/chat", "org/big"},
		},
		{
			desc:  "precision membership",
			query: leaderboard.Query{Precisions: []string{"bfloat16"}},
			want:  []string{"org/chat", "org/merged", "org/big", "org/gone", "org/flagged"},
		},
		{
			desc:  "precision sentinel excludes known precisions",
			query: leaderboard.Query{Precisions: []string{"None"}},
			want:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			got := table.Apply(tc.query)
			var names []string
			for _, r := range got.Rows {
				names = append(names, r.FullModel)
			}
			assert.ElementsMatch(t, tc.want, names)
		})
	}
}

func TestApply_ColumnProjectionKeepsMandatoryColumns(t *testing.T) {
	t.Parallel()

	table := buildTable(makeRow("org/a", 50))

	got := table.Apply(leaderboard.Query{Columns: []string{"license"}})

	assert.Equal(t, []string{"T", "model", "average", "license"}, got.Columns)
}
