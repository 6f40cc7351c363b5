package model

import (
	"strings"
	"time"
)

// ModelType classifies how a model was produced. Each variant carries the
// display symbol shown next to the model name on the leaderboard.
type ModelType uint8

const (
	Pretrained ModelType = iota
	ContinuouslyPretrained
	FineTuned
	Chat
	Merge
	Multimodal
	UnknownType
)

func (t ModelType) String() string {
	switch t {
	case Pretrained:
		return "pretrained"
	case ContinuouslyPretrained:
		return "continuously-pretrained"
	case FineTuned:
		return "fine-tuned"
	case Chat:
		return "chat"
	case Merge:
		return "merge"
	case Multimodal:
		return "multimodal"
	default:
		return "unknown"
	}
}

func (t ModelType) Symbol() string {
	switch t {
	case Pretrained:
		return "🟢"
	case ContinuouslyPretrained:
		return "🟩"
	case FineTuned:
		return "🔶"
	case Chat:
		return "💬"
	case Merge:
		return "🤝"
	case Multimodal:
		return "🌸"
	default:
		return "?"
	}
}

// ParseModelType maps free-text type labels, as found in request files and
// submission forms, to a ModelType.
func ParseModelType(s string) ModelType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "continuously") || strings.Contains(s, "continual"):
		return ContinuouslyPretrained
	case strings.Contains(s, "pretrained") || strings.Contains(s, "🟢"):
		return Pretrained
	case strings.Contains(s, "fine-tuned") || strings.Contains(s, "finetuned") || strings.Contains(s, "fine tuned") || strings.Contains(s, "🔶"):
		return FineTuned
	case strings.Contains(s, "chat") || strings.Contains(s, "instruct") || strings.Contains(s, "rl-tuned") || strings.Contains(s, "💬"):
		return Chat
	case strings.Contains(s, "merge"):
		return Merge
	case strings.Contains(s, "multimodal"):
		return Multimodal
	default:
		return UnknownType
	}
}

// Precision is the numeric format the weights are evaluated in.
type Precision string

const (
	Float16          Precision = "float16"
	Bfloat16         Precision = "bfloat16"
	Quant8           Precision = "8bit"
	Quant4           Precision = "4bit"
	GPTQ             Precision = "GPTQ"
	UnknownPrecision Precision = "?"
)

// ParsePrecision maps dtype literals written by the evaluation harness to a
// Precision. Unmapped values resolve to UnknownPrecision.
func ParsePrecision(s string) Precision {
	switch s {
	case "torch.float16", "float16":
		return Float16
	case "torch.bfloat16", "bfloat16":
		return Bfloat16
	case "8bit":
		return Quant8
	case "4bit":
		return Quant4
	case "GPTQ":
		return GPTQ
	default:
		return UnknownPrecision
	}
}

// WeightType says whether submitted weights are complete, a delta against a
// base model, or an adapter applied on top of one.
type WeightType string

const (
	Original WeightType = "Original"
	Delta    WeightType = "Delta"
	Adapter  WeightType = "Adapter"
)

// EvalResult is one evaluation run for a (model, precision, revision) triple,
// rebuilt from raw result files on every aggregation pass.
type EvalResult struct {
	EvalName          string             `json:"eval_name"`
	FullModel         string             `json:"full_model"`
	Org               string             `json:"org"`
	Model             string             `json:"model"`
	Revision          string             `json:"revision"`
	Results           map[string]float64 `json:"results"`
	NormalizedResults map[string]float64 `json:"normalized_results"`
	Precision         Precision          `json:"precision"`
	ModelType         ModelType          `json:"model_type"`
	WeightType        WeightType         `json:"weight_type"`
	Architecture      string             `json:"architecture"`
	License           string             `json:"license"`
	StillOnHub        bool               `json:"still_on_hub"`
	NumParams         float64            `json:"num_params"`
	Display           bool               `json:"display"`
}

// SplitModelID splits a hub identifier on the first "/". Identifiers without
// a "/" have no organization.
func SplitModelID(id string) (org, name string) {
	if i := strings.Index(id, "/"); i >= 0 {
		return id[:i], id[i+1:]
	}

	return "", id
}

// EvalName is the synthetic unique key for one (model, precision) pair,
// org_model_precision, or model_precision when there is no organization.
func EvalName(fullModel string, precision Precision) string {
	org, name := SplitModelID(fullModel)
	if org == "" {
		return name + "_" + string(precision)
	}

	return org + "_" + name + "_" + string(precision)
}

// Average is the mean of the normalized per-task scores present on the
// result. Zero when no task has a score.
func (r EvalResult) Average() float64 {
	if len(r.NormalizedResults) == 0 {
		return 0
	}
	var sum float64
	for _, v := range r.NormalizedResults {
		sum += v
	}

	return sum / float64(len(r.NormalizedResults))
}

// Merge unions the score maps of another result for the same eval name.
// Values already present win only when the other side has none; on key
// conflict the later (incoming) file wins.
func (r *EvalResult) Merge(other EvalResult) {
	for k, v := range other.Results {
		r.Results[k] = v
	}
	for k, v := range other.NormalizedResults {
		r.NormalizedResults[k] = v
	}
}

// Vote is one community vote for a pending submission.
type Vote struct {
	Model     string `json:"model"`
	Revision  string `json:"revision"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

// Timestamp layout used across request files and the vote ledger.
const TimeLayout = "2006-01-02T15:04:05Z"

// FormatTime renders a timestamp the way the queue and vote records store it,
// ISO-8601 UTC with a trailing Z.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
