// Package bedrock provides an embedding service adapter using Amazon Titan
// text embeddings on Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = domain.DefaultEmbedModel
	DefaultRegion     = domain.DefaultRegion
	DefaultDimensions = domain.DefaultDimensions
)

// titanV2Dimensions are the output sizes Titan Text Embeddings V2 accepts.
var titanV2Dimensions = map[int]bool{256: true, 512: true, 1024: true}

// InvokeModelAPI is the subset of the Bedrock runtime client used here.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput,
		optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Config holds configuration for the Bedrock embedding service.
type Config struct {
	// Region is the AWS region hosting the model (default: us-east-1).
	Region string

	// Model is the Bedrock model ID (default: amazon.titan-embed-text-v2:0).
	Model string

	// Dimensions is the requested vector size (default: 1024).
	Dimensions int
}

// EmbeddingService generates normalised embeddings with Titan.
type EmbeddingService struct {
	client     InvokeModelAPI
	model      string
	dimensions int
}

// titanRequest is the Titan embeddings request body.
type titanRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
	Normalize  bool   `json:"normalize"`
}

// titanResponse is the Titan embeddings response body.
type titanResponse struct {
	Embedding           []float64 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// NewEmbeddingService loads AWS credentials from the default chain
// (environment, shared config, instance role) and creates the service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}
	return NewWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg)
}

// NewWithClient creates the service around an existing runtime client.
func NewWithClient(client InvokeModelAPI, cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if strings.Contains(cfg.Model, "titan-embed-text-v2") && !titanV2Dimensions[cfg.Dimensions] {
		return nil, fmt.Errorf("bedrock: %s supports 256, 512 or 1024 dimensions, not %d", cfg.Model, cfg.Dimensions)
	}

	return &EmbeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanRequest{
		InputText:  text,
		Dimensions: s.dimensions,
		Normalize:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	out, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(s.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock: invoke %s: %w", s.model, err)
	}

	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("bedrock: empty embedding from %s", s.model)
	}

	embedding := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// EmbedBatch embeds texts one call at a time; Titan has no batch endpoint.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the Bedrock model ID.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a short probe; Bedrock runtime has no lighter call that
// exercises model access.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("bedrock: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
