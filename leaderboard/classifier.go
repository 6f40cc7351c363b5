package leaderboard

import (
	"strings"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry"
)

// Annotation tags attached to a row by the classifier. The undisclosed
// variants mean the model card text revealed what the declared tags did not.
const (
	TagMerge            = "merge"
	TagMoE              = "moe"
	TagUndisclosedMerge = "flagged:undisclosed_merge"
	TagUndisclosedMoE   = "flagged:undisclosed_moe"
)

// Classifier resolves a model's type and integrity tags from the curated
// table, the model name and the model card.
type Classifier struct {
	curated       map[string]model.ModelType
	mergeTags     []string
	mergeKeywords []string
	moeTags       []string
	moeKeywords   []string
}

func NewClassifier(cfg config.Classifier) *Classifier {
	curated := make(map[string]model.ModelType, len(cfg.CuratedTypes))
	for id, label := range cfg.CuratedTypes {
		curated[id] = model.ParseModelType(label)
	}

	return &Classifier{
		curated:       curated,
		mergeTags:     lower(cfg.MergeTags),
		mergeKeywords: lower(cfg.MergeKeywords),
		moeTags:       lower(cfg.MoETags),
		moeKeywords:   lower(cfg.MoEKeywords),
	}
}

// Classify returns the resolved model type and annotation tags. The curated
// table wins outright; otherwise the declared label and name heuristics
// decide, and merge detection overrides the type. MoE is an annotation only,
// never a type. A nil card means only name-based detection applies.
func (c *Classifier) Classify(fullModel, declared string, card *registry.Card) (model.ModelType, []string) {
	var tags []string

	mergedFromTags := c.matchesTags(card, c.mergeTags) || nameHasAny(fullModel, c.mergeTags)
	mergedFromText := c.matchesText(card, c.mergeKeywords)
	if mergedFromTags || mergedFromText {
		tags = append(tags, TagMerge)
		if mergedFromText && !mergedFromTags {
			tags = append(tags, TagUndisclosedMerge)
		}
	}

	moeFromTags := c.matchesTags(card, c.moeTags) || nameComponentHasAny(fullModel, c.moeTags)
	moeFromText := c.matchesText(card, c.moeKeywords) || nameComponentHasAny(fullModel, c.moeKeywords)
	if moeFromTags || moeFromText {
		tags = append(tags, TagMoE)
		if moeFromText && !moeFromTags {
			tags = append(tags, TagUndisclosedMoE)
		}
	}

	return c.resolveType(fullModel, declared, tags), tags
}

func (c *Classifier) resolveType(fullModel, declared string, tags []string) model.ModelType {
	if t, ok := c.curated[fullModel]; ok {
		return t
	}

	name := strings.ToLower(fullModel)
	switch {
	case strings.Contains(name, "pretrained"):
		return model.Pretrained
	case strings.Contains(name, "finetuned") || strings.Contains(name, "-ft-"):
		return model.FineTuned
	case strings.Contains(name, "-rl-") || strings.Contains(name, "-rlhf-") ||
		strings.Contains(name, "chat") || strings.Contains(name, "instruct"):
		return model.Chat
	}

	if hasTag(tags, TagMerge) {
		return model.Merge
	}

	if t := model.ParseModelType(declared); t != model.UnknownType {
		return t
	}

	return model.UnknownType
}

func (c *Classifier) matchesTags(card *registry.Card, wanted []string) bool {
	if card == nil {
		return false
	}
	for _, t := range card.Tags {
		t = strings.ToLower(t)
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}

	return false
}

func (c *Classifier) matchesText(card *registry.Card, keywords []string) bool {
	if card == nil || card.Text == "" {
		return false
	}
	text := strings.ToLower(card.Text)
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}

	return false
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}

	return false
}

// nameHasAny does substring matching on the full identifier.
func nameHasAny(fullModel string, words []string) bool {
	name := strings.ToLower(fullModel)
	for _, w := range words {
		if strings.Contains(name, w) {
			return true
		}
	}

	return false
}

// nameComponentHasAny splits the identifier on separators and matches whole
// components, so "moe" matches "org/mix-moe-7b" but not "org/mistral-demoed".
func nameComponentHasAny(fullModel string, words []string) bool {
	components := strings.FieldsFunc(strings.ToLower(fullModel), func(r rune) bool {
		return r == '/' || r == '-' || r == '_' || r == '.'
	})
	for _, c := range components {
		for _, w := range words {
			if c == w {
				return true
			}
		}
	}

	return false
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}

	return out
}
