package domain

import (
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderBedrock is AWS Bedrock (Titan embeddings).
	AIProviderBedrock AIProvider = "bedrock"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderBedrock, AIProviderAnthropic, AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
// Bedrock authenticates through the AWS credential chain instead.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderBedrock:
		return "AWS Bedrock (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// VectorProvider identifies the vector store backend.
type VectorProvider string

// Available vector store backends.
const (
	// VectorProviderPinecone is the managed Pinecone service.
	VectorProviderPinecone VectorProvider = "pinecone"

	// VectorProviderSQLite is a local SQLite file per index.
	VectorProviderSQLite VectorProvider = "sqlite"

	// VectorProviderMemory keeps vectors in process memory.
	VectorProviderMemory VectorProvider = "memory"
)

// IsValid returns true if the vector provider is recognised.
func (p VectorProvider) IsValid() bool {
	switch p {
	case VectorProviderPinecone, VectorProviderSQLite, VectorProviderMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p VectorProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p VectorProvider) Description() string {
	switch p {
	case VectorProviderPinecone:
		return "Pinecone (serverless)"
	case VectorProviderSQLite:
		return "SQLite (local file)"
	case VectorProviderMemory:
		return "Memory (ephemeral)"
	default:
		return unknownDescription
	}
}

// Environment variable names recognised at start-up.
const (
	EnvAirtableAPIKey         = "AIRTABLE_API_KEY"
	EnvAirtableBaseID         = "AIRTABLE_BASE_ID"
	EnvAirtableTable          = "AIRTABLE_TABLE_NAME"
	EnvAirtableCandidateTable = "AIRTABLE_CANDIDATE_TABLE_NAME"
	EnvAWSRegion              = "AWS_DEFAULT_REGION"
	EnvBedrockModel           = "BEDROCK_EMBED_MODEL"
	EnvBedrockDimensions      = "BEDROCK_EMBED_DIMENSIONS"
	EnvPineconeAPIKey         = "PINECONE_API_KEY"
	EnvPineconeRegion         = "PINECONE_REGION"
	EnvPineconeIndex          = "PINECONE_INDEX_NAME"
	EnvCandidateIndex         = "CANDIDATE_INDEX_NAME"
	EnvAnthropicAPIKey        = "ANTHROPIC_API_KEY"
	EnvAnthropicModel         = "ANTHROPIC_MODEL"
	EnvOpenAIAPIKey           = "OPENAI_API_KEY"
	EnvOllamaBaseURL          = "OLLAMA_BASE_URL"
	EnvEmbeddingProvider      = "RAGBOT_EMBEDDING_PROVIDER"
	EnvLLMProvider            = "RAGBOT_LLM_PROVIDER"
	EnvVectorProvider         = "RAGBOT_VECTOR_PROVIDER"
	EnvDataDir                = "RAGBOT_DATA_DIR"
)

// Default values.
const (
	DefaultProspectTable  = "Prospects"
	DefaultCandidateTable = "Candidats"
	DefaultRegion         = "us-east-1"
	DefaultEmbedModel     = "amazon.titan-embed-text-v2:0"
	DefaultDimensions     = 1024
	DefaultProspectIndex  = "airtable-vectors"
	DefaultCandidateIndex = "candidate-vectors"
	DefaultLLMModel       = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens      = 2048
	DefaultCloud          = "aws"
	DefaultMetric         = "cosine"
	DefaultRequestTimeout = 60 * time.Second
)

// SourceSettings holds tabular data source configuration.
type SourceSettings struct {
	APIKey         string
	BaseID         string
	ProspectTable  string
	CandidateTable string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// Dimensions is the vector size every index must share.
	Dimensions int

	// Region is the AWS region (for Bedrock).
	Region string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return e.Dimensions > 0
}

// LLMSettings holds generative model configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens bounds the answer length.
	MaxTokens int

	// Timeout bounds one model call.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderBedrock {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorSettings holds vector store configuration.
type VectorSettings struct {
	Provider       VectorProvider
	APIKey         string
	Cloud          string
	Region         string
	ProspectIndex  string
	CandidateIndex string
}

// Settings holds all process configuration.
type Settings struct {
	Source    SourceSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Vector    VectorSettings

	// DataDir holds local state (sqlite indexes, lock files, prompts).
	DataDir string
}

// DefaultSettings returns settings with the documented defaults.
// Credentials are left empty.
func DefaultSettings() Settings {
	return Settings{
		Source: SourceSettings{
			ProspectTable:  DefaultProspectTable,
			CandidateTable: DefaultCandidateTable,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderBedrock,
			Model:      DefaultEmbedModel,
			Dimensions: DefaultDimensions,
			Region:     DefaultRegion,
		},
		LLM: LLMSettings{
			Provider:  AIProviderAnthropic,
			Model:     DefaultLLMModel,
			MaxTokens: DefaultMaxTokens,
			Timeout:   DefaultRequestTimeout,
		},
		Vector: VectorSettings{
			Provider:       VectorProviderPinecone,
			Cloud:          DefaultCloud,
			Region:         DefaultRegion,
			ProspectIndex:  DefaultProspectIndex,
			CandidateIndex: DefaultCandidateIndex,
		},
	}
}

// TableFor returns the source table of a domain.
func (s Settings) TableFor(k Kind) string {
	if k == KindCandidates {
		return s.Source.CandidateTable
	}
	return s.Source.ProspectTable
}

// IndexFor returns the vector index name of a domain.
func (s Settings) IndexFor(k Kind) string {
	if k == KindCandidates {
		return s.Vector.CandidateIndex
	}
	return s.Vector.ProspectIndex
}

// Purpose names what a process is about to do, which decides what it needs.
type Purpose string

// Process purposes.
const (
	PurposeIngest Purpose = "ingest"
	PurposeSearch Purpose = "search"
	PurposeAsk    Purpose = "ask"
	PurposeAdmin  Purpose = "admin"
)

// Validate returns a *ConfigurationError naming every setting the purpose
// requires but lacks, or nil.
func (s Settings) Validate(p Purpose) error {
	var missing []string
	var reasons []string

	needSource := p == PurposeIngest
	needEmbedding := p == PurposeIngest || p == PurposeSearch || p == PurposeAsk
	needLLM := p == PurposeAsk

	if needSource {
		if s.Source.APIKey == "" {
			missing = append(missing, EnvAirtableAPIKey)
		}
		if s.Source.BaseID == "" {
			missing = append(missing, EnvAirtableBaseID)
		}
	}

	if needEmbedding {
		switch s.Embedding.Provider {
		case AIProviderBedrock:
			if s.Embedding.Model == "" {
				missing = append(missing, EnvBedrockModel)
			}
			if s.Embedding.Region == "" {
				missing = append(missing, EnvAWSRegion)
			}
		case AIProviderOpenAI:
			if s.Embedding.APIKey == "" {
				missing = append(missing, EnvOpenAIAPIKey)
			}
		case AIProviderOllama:
		default:
			reasons = append(reasons, "unsupported embedding provider "+string(s.Embedding.Provider))
		}
		if s.Embedding.Dimensions <= 0 {
			reasons = append(reasons, EnvBedrockDimensions+" must be positive")
		}
	}

	if needLLM {
		switch s.LLM.Provider {
		case AIProviderAnthropic:
			if s.LLM.APIKey == "" {
				missing = append(missing, EnvAnthropicAPIKey)
			}
		case AIProviderOpenAI:
			if s.LLM.APIKey == "" {
				missing = append(missing, EnvOpenAIAPIKey)
			}
		case AIProviderOllama:
		default:
			reasons = append(reasons, "unsupported llm provider "+string(s.LLM.Provider))
		}
	}

	switch s.Vector.Provider {
	case VectorProviderPinecone:
		if s.Vector.APIKey == "" {
			missing = append(missing, EnvPineconeAPIKey)
		}
	case VectorProviderSQLite:
		if s.DataDir == "" {
			missing = append(missing, EnvDataDir)
		}
	case VectorProviderMemory:
	default:
		reasons = append(reasons, "unsupported vector provider "+string(s.Vector.Provider))
	}

	if len(missing) == 0 && len(reasons) == 0 {
		return nil
	}
	cfgErr := &ConfigurationError{Missing: missing}
	if len(reasons) > 0 {
		cfgErr.Reason = strings.Join(reasons, "; ")
	}
	return cfgErr
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderBedrock,
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderAnthropic,
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderBedrock: DefaultEmbedModel,
		AIProviderOllama:  "mxbai-embed-large",
		AIProviderOpenAI:  "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderAnthropic: DefaultLLMModel,
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
	}
}
