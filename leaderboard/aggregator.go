package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/record"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
)

// Result files are named results_<timestamp>.json with a fractional second
// suffix, e.g. results_2024-02-05T14-30-12.123456.json.
const resultStampLayout = "2006-01-02T15-04-05"

// Aggregator rebuilds the full eval-result set from the raw result files.
type Aggregator struct {
	store        record.Store
	registry     registry.Registry
	tasks        []config.TaskRule
	folderMarker string
	logger       *slog.Logger
}

func NewAggregator(store record.Store, reg registry.Registry, cfg config.Config, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:        store,
		registry:     reg,
		tasks:        cfg.Tasks,
		folderMarker: cfg.FolderMarker,
		logger:       logger,
	}
}

// Aggregate walks every result file under prefix, keeps the latest file per
// model directory and calendar date, parses and merges them by eval name, and
// enriches the survivors with queue metadata. Unreadable files are logged and
// skipped so one bad upload never empties the leaderboard.
func (a *Aggregator) Aggregate(ctx context.Context, prefix string, idx *queue.Index) ([]model.EvalResult, error) {
	paths, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing result files: %w", err)
	}

	byEval := make(map[string]*model.EvalResult)
	for _, p := range a.selectFiles(paths) {
		var raw json.RawMessage
		if err := a.store.ReadJSON(ctx, p, &raw); err != nil {
			a.logger.Warn("skipping unreadable result file", slog.String("path", p), slog.Any("error", err))

			continue
		}
		res, err := ParseResult(raw, a.tasks)
		if err != nil {
			a.logger.Warn("skipping malformed result file", slog.String("path", p), slog.Any("error", err))

			continue
		}

		if existing, ok := byEval[res.EvalName]; ok {
			existing.Merge(res)
			existing.Display = existing.Display && res.Display
		} else {
			byEval[res.EvalName] = &res
		}
	}

	results := make([]model.EvalResult, 0, len(byEval))
	for _, res := range byEval {
		a.enrich(ctx, res, idx)
		results = append(results, *res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].EvalName < results[j].EvalName })

	return results, nil
}

// selectFiles groups result files by model directory and keeps, for each
// calendar date, the file with the latest timestamp. Ties fall to the
// lexically later filename. Directories where any timestamp cannot be parsed
// degrade to keeping only the lexically last file.
func (a *Aggregator) selectFiles(paths []string) []string {
	byDir := make(map[string][]string)
	for _, p := range paths {
		if !strings.HasSuffix(p, ".json") {
			continue
		}
		if a.folderMarker != "" && !strings.Contains(p, "/"+a.folderMarker+"/") {
			continue
		}
		dir := path.Dir(p)
		byDir[dir] = append(byDir[dir], p)
	}

	var selected []string
	for _, files := range byDir {
		sort.Strings(files)
		selected = append(selected, latestPerDate(files)...)
	}
	sort.Strings(selected)

	return selected
}

func latestPerDate(files []string) []string {
	type stamped struct {
		path string
		ts   time.Time
	}
	byDate := make(map[string]stamped)
	for _, f := range files {
		ts, ok := resultStamp(f)
		if !ok {
			return files[len(files)-1:]
		}
		date := ts.Format("2006-01-02")
		// files is sorted, so on equal timestamps the later name wins.
		if best, exists := byDate[date]; !exists || !ts.Before(best.ts) {
			byDate[date] = stamped{path: f, ts: ts}
		}
	}

	keep := make([]string, 0, len(byDate))
	for _, s := range byDate {
		keep = append(keep, s.path)
	}

	return keep
}

func resultStamp(p string) (time.Time, bool) {
	base := strings.TrimSuffix(path.Base(p), ".json")
	base = strings.TrimPrefix(base, "results_")
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	ts, err := time.Parse(resultStampLayout, base)
	if err != nil {
		return time.Time{}, false
	}

	return ts, true
}

// enrich cross-references a merged result with its request entry and the hub.
// Every lookup is best effort; a missing request file or an unreachable hub
// leaves the affected fields at their parse-time defaults.
func (a *Aggregator) enrich(ctx context.Context, res *model.EvalResult, idx *queue.Index) {
	if idx != nil {
		if entry, ok := idx.Find(res.FullModel, res.Precision, res.Revision); ok {
			res.ModelType = model.ParseModelType(entry.ModelType)
			res.WeightType = entry.WeightType
			if entry.Params > 0 {
				res.NumParams = entry.Params
			}
		} else {
			a.logger.Warn("no request file for result", slog.String("model", res.FullModel), slog.String("precision", string(res.Precision)))
		}
	}

	if a.registry == nil {
		return
	}

	if cfg, err := a.registry.GetConfig(ctx, res.FullModel, res.Revision); err == nil {
		res.StillOnHub = true
		if len(cfg.Architectures) > 0 {
			res.Architecture = strings.Join(cfg.Architectures, ";")
		}
	} else if errors.Is(err, registry.ErrGated) || errors.Is(err, registry.ErrRemoteCode) {
		res.StillOnHub = true
	}

	if res.NumParams == 0 {
		if md, err := a.registry.GetSafetensorsMetadata(ctx, res.FullModel); err == nil && md != nil && md.Total > 0 {
			res.NumParams = float64(md.Total) / 1e9
		}
	}
}
