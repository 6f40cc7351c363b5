package leaderboard

import (
	"fmt"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
)

// Row is one leaderboard row: an aggregated eval result plus the derived
// fields added by classification and moderation.
type Row struct {
	model.EvalResult

	Average          float64  `json:"average"`
	Tags             []string `json:"tags,omitempty"`
	Flagged          bool     `json:"flagged"`
	FlagReason       string   `json:"flag_reason,omitempty"`
	Merged           bool     `json:"merged"`
	MoE              bool     `json:"moe"`
	OfficialProvider bool     `json:"official_provider"`
}

// FlaggingEngine applies the moderation lists: the deny list removes rows
// outright, the flag list and undisclosed-merge detection annotate them, and
// official providers bypass flagging entirely.
type FlaggingEngine struct {
	denied    map[string]struct{}
	flagged   map[string]string
	providers map[string]struct{}
}

func NewFlaggingEngine(cfg config.Models) *FlaggingEngine {
	denied := make(map[string]struct{}, len(cfg.DoNotSubmit))
	for _, m := range cfg.DoNotSubmit {
		denied[m] = struct{}{}
	}
	providers := make(map[string]struct{}, len(cfg.OfficialProviders))
	for _, p := range cfg.OfficialProviders {
		providers[p] = struct{}{}
	}

	return &FlaggingEngine{
		denied:    denied,
		flagged:   cfg.Flagged,
		providers: providers,
	}
}

// Denied reports whether a model is excluded at its authors' request.
func (f *FlaggingEngine) Denied(fullModel string) bool {
	_, ok := f.denied[fullModel]

	return ok
}

// Official reports whether the model or its organization is on the official
// provider list.
func (f *FlaggingEngine) Official(fullModel string) bool {
	if _, ok := f.providers[fullModel]; ok {
		return true
	}
	org, _ := model.SplitModelID(fullModel)
	_, ok := f.providers[org]

	return ok
}

// Apply runs deny-list removal first, then flag annotation, over a row set.
func (f *FlaggingEngine) Apply(rows []Row) []Row {
	out := rows[:0]
	for _, row := range rows {
		if f.Denied(row.FullModel) {
			continue
		}
		out = append(out, f.annotate(row))
	}

	return out
}

func (f *FlaggingEngine) annotate(row Row) Row {
	row.OfficialProvider = f.Official(row.FullModel)
	if row.OfficialProvider {
		return row
	}

	if url, ok := f.flagged[row.FullModel]; ok {
		row.Flagged = true
		row.FlagReason = url

		return row
	}

	switch {
	case hasTag(row.Tags, TagUndisclosedMerge):
		row.Flagged = true
		row.FlagReason = fmt.Sprintf("model card of %s describes a merge the declared tags do not", row.FullModel)
	case hasTag(row.Tags, TagUndisclosedMoE):
		row.Flagged = true
		row.FlagReason = fmt.Sprintf("model card of %s describes a mixture of experts the declared tags do not", row.FullModel)
	}

	return row
}
