package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry"
)

// Registry is a mock implementation of the registry.Registry interface.
type Registry struct {
	mock.Mock
}

func (m *Registry) GetModelInfo(ctx context.Context, modelID, revision string) (registry.ModelInfo, error) {
	args := m.Called(ctx, modelID, revision)

	return args.Get(0).(registry.ModelInfo), args.Error(1)
}

func (m *Registry) GetConfig(ctx context.Context, modelID, revision string) (registry.ModelConfig, error) {
	args := m.Called(ctx, modelID, revision)

	return args.Get(0).(registry.ModelConfig), args.Error(1)
}

func (m *Registry) GetTokenizer(ctx context.Context, modelID, revision string) (registry.TokenizerConfig, error) {
	args := m.Called(ctx, modelID, revision)

	return args.Get(0).(registry.TokenizerConfig), args.Error(1)
}

func (m *Registry) GetCard(ctx context.Context, modelID string) (registry.Card, error) {
	args := m.Called(ctx, modelID)

	return args.Get(0).(registry.Card), args.Error(1)
}

func (m *Registry) GetSafetensorsMetadata(ctx context.Context, modelID string) (*registry.SafetensorsMetadata, error) {
	args := m.Called(ctx, modelID)
	if md := args.Get(0); md != nil {
		return md.(*registry.SafetensorsMetadata), args.Error(1)
	}

	return nil, args.Error(1)
}
