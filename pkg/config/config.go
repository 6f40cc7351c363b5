// Package config holds the curated leaderboard data that operators tune over
// time: the benchmark task table, classifier keyword lists, deny and flag
// lists, and submitter allow-lists. It is loaded from a TOML file so none of
// it lives as literals in the pipeline code.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// TaskRule tells the result parser how to extract one benchmark score.
// Tasks with an ExtraMetric average the two metrics; FallbackMetric covers
// result files written by older harness versions under a different key.
// Baseline is the chance-level accuracy used for normalization, 0 when the
// raw score is already on a 0-1 scale.
type TaskRule struct {
	Benchmark      string  `toml:"benchmark"`
	Metric         string  `toml:"metric"`
	ExtraMetric    string  `toml:"extra_metric"`
	FallbackMetric string  `toml:"fallback_metric"`
	DisplayName    string  `toml:"display_name"`
	Baseline       float64 `toml:"baseline"`
	Mandatory      bool    `toml:"mandatory"`
}

// Classifier carries the merge and mixture-of-experts detection lists. They
// are tuned empirically and expected to evolve.
type Classifier struct {
	CuratedTypes  map[string]string `toml:"curated_types"`
	MergeTags     []string          `toml:"merge_tags"`
	MergeKeywords []string          `toml:"merge_keywords"`
	MoETags       []string          `toml:"moe_tags"`
	MoEKeywords   []string          `toml:"moe_keywords"`
}

// Models carries moderation lists: models excluded at the authors' request,
// community-flagged models with their discussion link, and providers whose
// rows are never flagged.
type Models struct {
	DoNotSubmit       []string          `toml:"do_not_submit"`
	Flagged           map[string]string `toml:"flagged"`
	OfficialProviders []string          `toml:"official_providers"`
}

// Submitters carries the rate-limit allow-lists.
type Submitters struct {
	Curated     []string `toml:"curated"`
	HigherLimit []string `toml:"higher_limit"`
}

type Config struct {
	Tasks        []TaskRule `toml:"tasks"`
	FolderMarker string     `toml:"folder_marker"`
	Classifier   Classifier `toml:"classifier"`
	Models       Models     `toml:"models"`
	Submitters   Submitters `toml:"submitters"`
}

// Default is the configuration shipped with the service: the three French
// community benchmarks and the detection lists in use today.
func Default() Config {
	return Config{
		Tasks: []TaskRule{
			{
				Benchmark:   "community|gpqa-fr|0",
				Metric:      "new_acc",
				DisplayName: "GPQA-fr",
				Baseline:    0.25,
				Mandatory:   true,
			},
			{
				Benchmark:   "community|ifeval-fr|0",
				Metric:      "prompt_level_strict_acc",
				ExtraMetric: "inst_level_strict_acc",
				DisplayName: "IFEval-fr",
				Mandatory:   true,
			},
			{
				Benchmark:      "community|bac-fr|0",
				Metric:         "bac-fr-qem",
				FallbackMetric: "qem",
				DisplayName:    "bac-fr",
				Mandatory:      true,
			},
		},
		Classifier: Classifier{
			MergeTags:     []string{"merge", "moerge", "mergekit", "lazymergekit"},
			MergeKeywords: []string{"mergekit", "merged model", "merge model", "moerge", "merging"},
			MoETags:       []string{"moe", "moerge"},
			MoEKeywords:   []string{"moe", "mixtral", "mixture of experts"},
		},
		Models: Models{
			DoNotSubmit: []string{
				"Voicelab/trurl-2-13b",
				"TigerResearch/tigerbot-70b-chat",
				"TigerResearch/tigerbot-70b-chat-v2",
				"TigerResearch/tigerbot-70b-chat-v4-4k",
			},
			Flagged:           map[string]string{},
			OfficialProviders: []string{},
		},
	}
}

// Load reads a TOML configuration file and overlays it on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return cfg, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := tree.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// MandatoryBenchmarks lists the benchmark keys a row must have scores for to
// be shown on the leaderboard.
func (c Config) MandatoryBenchmarks() []string {
	var keys []string
	for _, t := range c.Tasks {
		if t.Mandatory {
			keys = append(keys, t.Benchmark)
		}
	}

	return keys
}
