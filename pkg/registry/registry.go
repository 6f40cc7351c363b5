// Package registry is the boundary to the remote model-hosting hub. The core
// only depends on the Registry interface; the HTTP client lives in client.go
// and tests use the mocks subpackage.
package registry

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means the model or file does not exist, or is private.
	ErrNotFound = errors.New("model not found on hub")
	// ErrRemoteCode means loading the model requires executing repository
	// code, which submissions are not allowed to do.
	ErrRemoteCode = errors.New("model requires remote code execution")
	// ErrGated means the repository exists but access is gated. Validation
	// treats this as a soft pass.
	ErrGated = errors.New("model repository is gated")
	// ErrTokenizer means the tokenizer is missing or not loadable from a
	// stable release.
	ErrTokenizer = errors.New("tokenizer cannot be loaded")
)

// ModelConfig is the subset of a model's config.json the validator needs.
type ModelConfig struct {
	Architectures    []string
	ModelType        string
	QuantizationBits int
}

// TokenizerConfig is the subset of tokenizer_config.json the validator needs.
type TokenizerConfig struct {
	Class           string
	HasChatTemplate bool
}

// Card is a model card: license metadata, declared tags and the body text.
type Card struct {
	License     string
	LicenseName string
	LicenseLink string
	Tags        []string
	Text        string
}

// SafetensorsMetadata carries parameter counts by tensor dtype as reported by
// the hub.
type SafetensorsMetadata struct {
	ParameterCounts map[string]int64
	Total           int64
}

// ModelInfo is the hub's record for a model at a revision.
type ModelInfo struct {
	ID        string
	SHA       string
	Siblings  []string
	Likes     int
	Downloads int
	CreatedAt time.Time
	CardData  *Card
	Gated     bool
}

type Registry interface {
	// GetModelInfo resolves a model at a revision, including the commit SHA
	// and repository file listing.
	GetModelInfo(ctx context.Context, modelID, revision string) (ModelInfo, error)

	// GetConfig fetches and inspects the model's config.json.
	GetConfig(ctx context.Context, modelID, revision string) (ModelConfig, error)

	// GetTokenizer fetches and inspects the model's tokenizer_config.json.
	GetTokenizer(ctx context.Context, modelID, revision string) (TokenizerConfig, error)

	// GetCard fetches the model card. ErrNotFound when the model has none.
	GetCard(ctx context.Context, modelID string) (Card, error)

	// GetSafetensorsMetadata returns tensor parameter counts, or nil when
	// the model publishes no safetensors metadata.
	GetSafetensorsMetadata(ctx context.Context, modelID string) (*SafetensorsMetadata, error)
}
