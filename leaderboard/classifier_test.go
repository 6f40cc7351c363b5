package leaderboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/model"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry"
)

func newClassifier() *leaderboard.Classifier {
	return leaderboard.NewClassifier(config.Default().Classifier)
}

func TestClassify_CuratedTableWins(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Classifier
	cfg.CuratedTypes = map[string]string{"org/chatty-model": "pretrained"}
	c := leaderboard.NewClassifier(cfg)

	// The name heuristic would say chat, the curated entry overrides it.
	got, _ := c.Classify("org/chatty-model", "", nil)
	assert.Equal(t, model.Pretrained, got)
}

func TestClassify_NameHeuristics(t *testing.T) {
	t.Parallel()

	cases := []struct {
		fullModel string
		want      model.ModelType
	}{
		{fullModel: "org/llama-pretrained-7b", want: model.Pretrained},
		{fullModel: "org/llama-finetuned", want: model.FineTuned},
		{fullModel: "org/llama-ft-7b", want: model.FineTuned},
		{fullModel: "org/llama-rlhf-7b", want: model.Chat},
		{fullModel: "org/llama-instruct", want: model.Chat},
		{fullModel: "org/vicuna-chat", want: model.Chat},
	}

	c := newClassifier()
	for _, tc := range cases {
		t.Run(tc.fullModel, func(t *testing.T) {
			t.Parallel()

			got, _ := c.Classify(tc.fullModel, "", nil)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_DeclaredLabelFallback(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	got, _ := c.Classify("org/some-model", "multimodal", nil)
	assert.Equal(t, model.Multimodal, got)

	got, _ = c.Classify("org/some-model", "", nil)
	assert.Equal(t, model.UnknownType, got)
}

func TestClassify_DisclosedMerge(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	card := &registry.Card{
		Tags: []string{"mergekit"},
		Text: "Built with mergekit from two base models.",
	}

	typ, tags := c.Classify("org/frankenmodel", "", card)

	assert.Equal(t, model.Merge, typ)
	assert.Contains(t, tags, leaderboard.TagMerge)
	assert.NotContains(t, tags, leaderboard.TagUndisclosedMerge)
}

func TestClassify_UndisclosedMerge(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	// Keywords appear in the card text but neither tags nor name admit it.
	card := &registry.Card{
		Tags: []string{"text-generation"},
		Text: "This is a merged model built by merging two checkpoints.",
	}

	typ, tags := c.Classify("org/frankenmodel", "", card)

	assert.Equal(t, model.Merge, typ)
	assert.Contains(t, tags, leaderboard.TagMerge)
	assert.Contains(t, tags, leaderboard.TagUndisclosedMerge)
}

func TestClassify_MoEIsAnnotationOnly(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	card := &registry.Card{Tags: []string{"moe"}}

	typ, tags := c.Classify("org/mix-8x7b", "pretrained", card)

	assert.Equal(t, model.Pretrained, typ)
	assert.Contains(t, tags, leaderboard.TagMoE)
	assert.NotContains(t, tags, leaderboard.TagUndisclosedMoE)
}

func TestClassify_UndisclosedMoEFromName(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	// "mixtral" is a keyword, not a tag, so the annotation is undisclosed.
	typ, tags := c.Classify("org/mixtral-clone", "chat", nil)

	assert.Equal(t, model.Chat, typ)
	assert.Contains(t, tags, leaderboard.TagMoE)
	assert.Contains(t, tags, leaderboard.TagUndisclosedMoE)
}

func TestClassify_MoEComponentMatching(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	_, tags := c.Classify("org/mix-moe-7b", "", nil)
	assert.Contains(t, tags, leaderboard.TagMoE)

	// "moe" inside a larger word does not count.
	_, tags = c.Classify("org/mistral-demoed", "", nil)
	assert.NotContains(t, tags, leaderboard.TagMoE)
}

func TestClassify_NilCard(t *testing.T) {
	t.Parallel()

	c := newClassifier()

	typ, tags := c.Classify("org/plain-model", "fine-tuned", nil)

	assert.Equal(t, model.FineTuned, typ)
	assert.Empty(t, tags)
}
