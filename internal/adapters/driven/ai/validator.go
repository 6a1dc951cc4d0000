package ai

import (
	"context"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// ConfigValidator checks that configured providers answer.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding creates the embedding service, pings it and closes it.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLM creates the LLM service, pings it and closes it.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateAndValidateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}
