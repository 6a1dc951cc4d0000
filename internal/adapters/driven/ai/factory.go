// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	bedrockembed "github.com/custodia-labs/ragbot/internal/adapters/driven/embedding/bedrock"
	ollamaembed "github.com/custodia-labs/ragbot/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragbot/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/ragbot/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/ragbot/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ragbot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, &domain.EmbeddingError{
			Model: svc.ModelName(),
			Err:   fmt.Errorf("%s unreachable: %w", settings.Provider.Description(), err),
		}
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, &domain.GenerationError{
			Model: svc.ModelName(),
			Err:   fmt.Errorf("%s unreachable: %w", settings.Provider.Description(), err),
		}
	}

	return svc, nil
}

// CreateEmbeddingService creates the embedding service the settings name.
// Unconfigured settings are a *domain.ConfigurationError.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, embeddingConfigError(settings)
	}

	switch settings.Provider {
	case domain.AIProviderBedrock:
		return bedrockembed.NewEmbeddingService(ctx, bedrockembed.Config{
			Region:     settings.Region,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the LLM service the settings name.
// Unconfigured settings are a *domain.ConfigurationError.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, llmConfigError(settings)
	}

	switch settings.Provider {
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:    settings.APIKey,
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			MaxTokens: settings.MaxTokens,
			Timeout:   settings.Timeout,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	default:
		return nil, fmt.Errorf("%w: llm provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

func embeddingConfigError(settings *domain.EmbeddingSettings) error {
	if settings == nil {
		return &domain.ConfigurationError{Reason: "embedding settings missing"}
	}
	switch {
	case settings.Provider == domain.AIProviderAnthropic:
		return &domain.ConfigurationError{Reason: "anthropic does not provide embeddings, use bedrock, openai or ollama"}
	case !settings.Provider.IsValid():
		return &domain.ConfigurationError{Reason: "unsupported embedding provider " + string(settings.Provider)}
	case settings.Provider.RequiresAPIKey() && settings.APIKey == "":
		return &domain.ConfigurationError{Missing: []string{domain.EnvOpenAIAPIKey}}
	default:
		return &domain.ConfigurationError{Reason: domain.EnvBedrockDimensions + " must be positive"}
	}
}

func llmConfigError(settings *domain.LLMSettings) error {
	if settings == nil {
		return &domain.ConfigurationError{Reason: "llm settings missing"}
	}
	switch {
	case settings.Provider == domain.AIProviderBedrock || !settings.Provider.IsValid():
		return &domain.ConfigurationError{Reason: "unsupported llm provider " + string(settings.Provider)}
	case settings.Provider == domain.AIProviderAnthropic:
		return &domain.ConfigurationError{Missing: []string{domain.EnvAnthropicAPIKey}}
	default:
		return &domain.ConfigurationError{Missing: []string{domain.EnvOpenAIAPIKey}}
	}
}
