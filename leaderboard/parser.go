package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
	pkgerrors "github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/errors"
)

type rawResult struct {
	Config *struct {
		ModelDtype string `json:"model_dtype"`
		ModelName  string `json:"model_name"`
		ModelArgs  string `json:"model_args"`
		ModelSHA   string `json:"model_sha"`
	} `json:"config_general"`
	Results map[string]map[string]any `json:"results"`
}

// ParseResult normalizes one raw evaluation-result file into an EvalResult.
// A task whose required metric is absent or null marks the whole result as
// not displayable; a missing config block fails the file.
func ParseResult(data []byte, tasks []config.TaskRule) (model.EvalResult, error) {
	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.EvalResult{}, errors.Join(pkgerrors.ErrMalformedFile, err)
	}
	if raw.Config == nil {
		return model.EvalResult{}, fmt.Errorf("%w: missing config_general block", pkgerrors.ErrMalformedFile)
	}

	fullModel := raw.Config.ModelName
	if fullModel == "" {
		fullModel = raw.Config.ModelArgs
	}
	if fullModel == "" {
		return model.EvalResult{}, fmt.Errorf("%w: missing model name", pkgerrors.ErrMalformedFile)
	}

	precision := model.ParsePrecision(raw.Config.ModelDtype)
	org, name := model.SplitModelID(fullModel)

	revision := raw.Config.ModelSHA
	if revision == "" {
		revision = "main"
	}

	res := model.EvalResult{
		EvalName:          model.EvalName(fullModel, precision),
		FullModel:         fullModel,
		Org:               org,
		Model:             name,
		Revision:          revision,
		Results:           make(map[string]float64),
		NormalizedResults: make(map[string]float64),
		Precision:         precision,
		ModelType:         model.UnknownType,
		WeightType:        model.Original,
		Architecture:      "unknown",
		License:           "?",
		Display:           true,
	}

	for _, task := range tasks {
		sub, ok := raw.Results[task.Benchmark]
		if !ok {
			res.Display = false

			continue
		}

		score, ok := taskScore(sub, task)
		if !ok {
			res.Display = false

			continue
		}

		res.Results[task.Benchmark] = score * 100
		if task.Baseline > 0 {
			res.NormalizedResults[task.Benchmark] = max(0, (score-task.Baseline)/(1-task.Baseline)) * 100
		} else {
			res.NormalizedResults[task.Benchmark] = score * 100
		}
	}

	return res, nil
}

// taskScore extracts the raw 0-1 score for one task. Two-metric tasks average
// both values and fail when either is missing.
func taskScore(sub map[string]any, task config.TaskRule) (float64, bool) {
	primary, ok := metricValue(sub, task.Metric)
	if !ok && task.FallbackMetric != "" {
		primary, ok = metricValue(sub, task.FallbackMetric)
	}
	if !ok {
		return 0, false
	}

	if task.ExtraMetric == "" {
		return primary, true
	}

	extra, ok := metricValue(sub, task.ExtraMetric)
	if !ok {
		return 0, false
	}

	return (primary + extra) / 2, true
}

func metricValue(sub map[string]any, key string) (float64, bool) {
	v, ok := sub[key]
	if !ok || v == nil {
		return 0, false
	}
	f, ok := v.(float64)

	return f, ok
}
