package leaderboard

import (
	"math"
	"sort"
	"strings"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
)

// Column identifiers. TypeSymbol, Model and Average are never hidden by a
// column selection; benchmark columns use the task display names.
const (
	ColTypeSymbol   = "T"
	ColModel        = "model"
	ColAverage      = "average"
	ColPrecision    = "precision"
	ColType         = "type"
	ColWeightType   = "weight_type"
	ColArchitecture = "architecture"
	ColParams       = "params_b"
	ColLicense      = "license"
	ColRevision     = "revision"
	ColOnHub        = "still_on_hub"
	ColFlagged      = "flagged"
)

// SizeBucket is one parameter-count interval selectable in the size filter.
type SizeBucket struct {
	Label string
	Lo    float64
	Hi    float64
}

// SizeBuckets are half-open intervals over billions of parameters. A row
// belongs to the bucket with Lo <= params < Hi.
var SizeBuckets = []SizeBucket{
	{Label: "<1B", Lo: 0, Hi: 1},
	{Label: "1B-3B", Lo: 1, Hi: 3},
	{Label: "3B-7B", Lo: 3, Hi: 7},
	{Label: "7B-13B", Lo: 7, Hi: 13},
	{Label: "13B-35B", Lo: 13, Hi: 35},
	{Label: "35B-60B", Lo: 35, Hi: 60},
	{Label: ">60B", Lo: 60, Hi: math.Inf(1)},
}

func (b SizeBucket) contains(params float64) bool {
	return params >= b.Lo && params < b.Hi
}

// Table is a built leaderboard: admitted rows sorted by average descending,
// plus the visible column set.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Query carries the interactive filter controls. Empty slices leave their
// dimension unconstrained.
type Query struct {
	Search     string   `json:"search"`
	Types      []string `json:"types"`
	Precisions []string `json:"precisions"`
	Sizes      []string `json:"sizes"`
	Columns    []string `json:"columns"`

	HideUnavailable bool `json:"hide_unavailable"`
	HideMerges      bool `json:"hide_merges"`
	HideMoE         bool `json:"hide_moe"`
	HideFlagged     bool `json:"hide_flagged"`
}

// Build admits rows to a table. A row is shown only when every mandatory
// benchmark has a score and its display flag survived merging. Rows sort by
// average descending; equal averages keep their input order.
func Build(rows []Row, cfg config.Config) Table {
	mandatory := cfg.MandatoryBenchmarks()

	admitted := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !row.Display {
			continue
		}
		if !hasAllBenchmarks(row, mandatory) {
			continue
		}
		admitted = append(admitted, row)
	}

	sort.SliceStable(admitted, func(i, j int) bool {
		return admitted[i].Average > admitted[j].Average
	})

	return Table{Columns: defaultColumns(cfg), Rows: admitted}
}

func hasAllBenchmarks(row Row, mandatory []string) bool {
	for _, b := range mandatory {
		if _, ok := row.NormalizedResults[b]; !ok {
			return false
		}
	}

	return true
}

func defaultColumns(cfg config.Config) []string {
	cols := []string{ColTypeSymbol, ColModel, ColAverage}
	for _, t := range cfg.Tasks {
		cols = append(cols, t.DisplayName)
	}

	return append(cols,
		ColType, ColPrecision, ColWeightType, ColArchitecture,
		ColParams, ColLicense, ColRevision, ColOnHub, ColFlagged)
}

// Apply runs the search grammar, then the categorical filters, then the
// column projection over a built table. The input table is not modified.
func (t Table) Apply(q Query) Table {
	out := Table{Columns: t.Columns, Rows: t.Rows}
	out = out.search(q.Search)
	out = out.filter(q)
	out.Columns = projectColumns(t.Columns, q.Columns)

	return out
}

// search implements the clause grammar: the query splits on ";", clauses with
// a "license:" prefix become license filters, the rest match model names.
// Name clauses are OR-combined; the license set then AND-filters that union.
func (t Table) search(query string) Table {
	query = strings.TrimSpace(query)
	if query == "" {
		return t
	}

	var nameClauses, licenseClauses []string
	for _, clause := range strings.Split(query, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		lowered := strings.ToLower(clause)
		switch {
		case strings.HasPrefix(lowered, "license:"):
			licenseClauses = append(licenseClauses, strings.TrimSpace(clause[len("license:"):]))
		case strings.HasPrefix(lowered, "licence:"):
			licenseClauses = append(licenseClauses, strings.TrimSpace(clause[len("licence:"):]))
		default:
			nameClauses = append(nameClauses, clause)
		}
	}
	if len(nameClauses) == 0 && len(licenseClauses) == 0 {
		return t
	}

	rows := t.Rows
	if len(nameClauses) > 0 {
		seen := make(map[string]struct{})
		var union []Row
		for _, clause := range nameClauses {
			clause = strings.ToLower(clause)
			for _, row := range rows {
				if !strings.Contains(strings.ToLower(row.FullModel), clause) {
					continue
				}
				key := row.FullModel + "|" + string(row.Precision) + "|" + row.Revision
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				union = append(union, row)
			}
		}
		rows = union
	}

	if len(licenseClauses) > 0 {
		var kept []Row
		for _, row := range rows {
			license := strings.ToLower(row.License)
			for _, clause := range licenseClauses {
				if strings.Contains(license, strings.ToLower(clause)) {
					kept = append(kept, row)

					break
				}
			}
		}
		rows = kept
	}

	return Table{Columns: t.Columns, Rows: rows}
}

func (t Table) filter(q Query) Table {
	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if !matchesTypes(row, q.Types) {
			continue
		}
		if !matchesPrecisions(row, q.Precisions) {
			continue
		}
		if !matchesSizes(row, q.Sizes) {
			continue
		}
		if q.HideUnavailable && !row.StillOnHub {
			continue
		}
		if q.HideMerges && row.Merged {
			continue
		}
		if q.HideMoE && row.MoE {
			continue
		}
		if q.HideFlagged && row.Flagged {
			continue
		}
		rows = append(rows, row)
	}

	return Table{Columns: t.Columns, Rows: rows}
}

// matchesTypes accepts both symbols and type names in the selection.
func matchesTypes(row Row, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == row.ModelType.Symbol() || strings.EqualFold(t, row.ModelType.String()) {
			return true
		}
	}

	return false
}

// matchesPrecisions treats the "None" sentinel as unknown precision.
func matchesPrecisions(row Row, precisions []string) bool {
	if len(precisions) == 0 {
		return true
	}
	for _, p := range precisions {
		if p == "None" {
			p = string(model.UnknownPrecision)
		}
		if p == string(row.Precision) {
			return true
		}
	}

	return false
}

func matchesSizes(row Row, sizes []string) bool {
	if len(sizes) == 0 {
		return true
	}
	for _, label := range sizes {
		for _, b := range SizeBuckets {
			if b.Label == label && b.contains(row.NumParams) {
				return true
			}
		}
	}

	return false
}

// projectColumns intersects the default columns with a selection, keeping the
// never-hidden columns and the default ordering.
func projectColumns(defaults, selection []string) []string {
	if len(selection) == 0 {
		return defaults
	}
	wanted := make(map[string]struct{}, len(selection))
	for _, c := range selection {
		wanted[c] = struct{}{}
	}

	cols := make([]string, 0, len(defaults))
	for _, c := range defaults {
		switch c {
		case ColTypeSymbol, ColModel, ColAverage:
			cols = append(cols, c)

			continue
		}
		if _, ok := wanted[c]; ok {
			cols = append(cols, c)
		}
	}

	return cols
}
