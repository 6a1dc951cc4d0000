package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	validator := NewConfigValidator()
	server := newOllamaServer(t, true)

	err := validator.ValidateEmbedding(context.Background(), &domain.EmbeddingSettings{
		Provider:   domain.AIProviderOllama,
		BaseURL:    server.URL,
		Dimensions: 1024,
	})

	assert.NoError(t, err)
}

func TestConfigValidator_ValidateEmbedding_Unconfigured(t *testing.T) {
	validator := NewConfigValidator()

	err := validator.ValidateEmbedding(context.Background(), &domain.EmbeddingSettings{Provider: "", Model: "m"})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	validator := NewConfigValidator()
	healthy := newOllamaServer(t, true)
	broken := newOllamaServer(t, false)

	assert.NoError(t, validator.ValidateLLM(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  healthy.URL,
	}))

	assert.ErrorIs(t, validator.ValidateLLM(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  broken.URL,
	}), domain.ErrGeneration)
}
