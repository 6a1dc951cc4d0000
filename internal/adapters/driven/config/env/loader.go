// Package env resolves process settings from a .env file, the optional TOML
// config file and the environment, in increasing order of precedence.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// DefaultEnvFile is read from the working directory when no path is given.
const DefaultEnvFile = ".env"

// LoadDotEnv loads variables from path into the process environment without
// overriding variables that are already set. A missing default file is
// ignored; a missing explicit file is an error.
func LoadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	logger.Debug("Loaded environment from %s", path)
	return nil
}

// LookupFunc reads one variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Loader builds domain.Settings.
type Loader struct {
	store  driven.ConfigStore
	lookup LookupFunc
	home   string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLookup replaces os.LookupEnv.
func WithLookup(fn LookupFunc) Option {
	return func(l *Loader) {
		l.lookup = fn
	}
}

// WithHomeDir sets the directory that "~" and the default data dir resolve against.
func WithHomeDir(dir string) Option {
	return func(l *Loader) {
		l.home = dir
	}
}

// NewLoader creates a loader. store may be nil when there is no config file.
func NewLoader(store driven.ConfigStore, opts ...Option) *Loader {
	l := &Loader{store: store, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}
	if l.home == "" {
		l.home, _ = os.UserHomeDir()
	}
	return l
}

// raw collects provider credentials before the providers are known.
type raw struct {
	embeddingModel bool
	llmModel       bool
	anthropicKey   string
	openaiKey      string
	ollamaURL      string
}

// field binds an environment variable and a config file key to a setting.
// Either name may be empty.
type field struct {
	env string
	key string
	set func(s *domain.Settings, r *raw, v string) error
}

var fields = []field{
	{domain.EnvAirtableAPIKey, "airtable.api_key", func(s *domain.Settings, _ *raw, v string) error {
		s.Source.APIKey = v
		return nil
	}},
	{domain.EnvAirtableBaseID, "airtable.base_id", func(s *domain.Settings, _ *raw, v string) error {
		s.Source.BaseID = v
		return nil
	}},
	{domain.EnvAirtableTable, "airtable.table", func(s *domain.Settings, _ *raw, v string) error {
		s.Source.ProspectTable = v
		return nil
	}},
	{domain.EnvAirtableCandidateTable, "airtable.candidate_table", func(s *domain.Settings, _ *raw, v string) error {
		s.Source.CandidateTable = v
		return nil
	}},
	{domain.EnvEmbeddingProvider, "embedding.provider", func(s *domain.Settings, _ *raw, v string) error {
		s.Embedding.Provider = domain.AIProvider(strings.ToLower(v))
		return nil
	}},
	{domain.EnvBedrockModel, "embedding.model", func(s *domain.Settings, r *raw, v string) error {
		s.Embedding.Model = v
		r.embeddingModel = true
		return nil
	}},
	{domain.EnvBedrockDimensions, "embedding.dimensions", func(s *domain.Settings, _ *raw, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s: %q is not a positive integer", domain.EnvBedrockDimensions, v)
		}
		s.Embedding.Dimensions = n
		return nil
	}},
	{domain.EnvAWSRegion, "embedding.region", func(s *domain.Settings, _ *raw, v string) error {
		s.Embedding.Region = v
		return nil
	}},
	{domain.EnvLLMProvider, "llm.provider", func(s *domain.Settings, _ *raw, v string) error {
		s.LLM.Provider = domain.AIProvider(strings.ToLower(v))
		return nil
	}},
	{domain.EnvAnthropicModel, "llm.model", func(s *domain.Settings, r *raw, v string) error {
		s.LLM.Model = v
		r.llmModel = true
		return nil
	}},
	{"", "llm.max_tokens", func(s *domain.Settings, _ *raw, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("llm.max_tokens: %q is not a positive integer", v)
		}
		s.LLM.MaxTokens = n
		return nil
	}},
	{"", "llm.timeout", func(s *domain.Settings, _ *raw, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("llm.timeout: %q is not a positive duration", v)
		}
		s.LLM.Timeout = d
		return nil
	}},
	{domain.EnvAnthropicAPIKey, "anthropic.api_key", func(_ *domain.Settings, r *raw, v string) error {
		r.anthropicKey = v
		return nil
	}},
	{domain.EnvOpenAIAPIKey, "openai.api_key", func(_ *domain.Settings, r *raw, v string) error {
		r.openaiKey = v
		return nil
	}},
	{domain.EnvOllamaBaseURL, "ollama.base_url", func(_ *domain.Settings, r *raw, v string) error {
		r.ollamaURL = v
		return nil
	}},
	{domain.EnvVectorProvider, "vector.provider", func(s *domain.Settings, _ *raw, v string) error {
		s.Vector.Provider = domain.VectorProvider(strings.ToLower(v))
		return nil
	}},
	{domain.EnvPineconeAPIKey, "pinecone.api_key", func(s *domain.Settings, _ *raw, v string) error {
		s.Vector.APIKey = v
		return nil
	}},
	{"", "pinecone.cloud", func(s *domain.Settings, _ *raw, v string) error {
		s.Vector.Cloud = v
		return nil
	}},
	{domain.EnvPineconeRegion, "pinecone.region", func(s *domain.Settings, _ *raw, v string) error {
		s.Vector.Region = v
		return nil
	}},
	{domain.EnvPineconeIndex, "pinecone.index", func(s *domain.Settings, _ *raw, v string) error {
		s.Vector.ProspectIndex = v
		return nil
	}},
	{domain.EnvCandidateIndex, "pinecone.candidate_index", func(s *domain.Settings, _ *raw, v string) error {
		s.Vector.CandidateIndex = v
		return nil
	}},
	{domain.EnvDataDir, "data_dir", func(s *domain.Settings, _ *raw, v string) error {
		s.DataDir = v
		return nil
	}},
}

// Settings resolves the effective settings. It does not validate them;
// callers run domain.Settings.Validate for their purpose.
func (l *Loader) Settings() (domain.Settings, error) {
	s := domain.DefaultSettings()
	s.DataDir = filepath.Join(l.home, ".ragbot")
	var r raw
	var errs []error

	for _, f := range fields {
		v, ok := l.value(f)
		if !ok {
			continue
		}
		if err := f.set(&s, &r, v); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return domain.Settings{}, &domain.ConfigurationError{Reason: errors.Join(errs...).Error()}
	}

	l.resolveProviders(&s, r)
	s.DataDir = l.expandHome(s.DataDir)
	return s, nil
}

// value returns the environment value, else the config file value.
// Blank values count as unset.
func (l *Loader) value(f field) (string, bool) {
	if f.env != "" {
		if v, ok := l.lookup(f.env); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	if f.key == "" || l.store == nil {
		return "", false
	}
	v, ok := l.store.Get(f.key)
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return "", false
		}
		return strings.TrimSpace(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int:
		return strconv.Itoa(x), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return fmt.Sprint(x), true
	}
}

// resolveProviders hands each provider its credential and swaps in the
// provider's default model unless one was given explicitly.
func (l *Loader) resolveProviders(s *domain.Settings, r raw) {
	switch s.Embedding.Provider {
	case domain.AIProviderOpenAI:
		s.Embedding.APIKey = r.openaiKey
	case domain.AIProviderOllama:
		s.Embedding.BaseURL = r.ollamaURL
	}
	if !r.embeddingModel {
		if m, ok := domain.DefaultEmbeddingModels()[s.Embedding.Provider]; ok {
			s.Embedding.Model = m
		}
	}

	switch s.LLM.Provider {
	case domain.AIProviderAnthropic:
		s.LLM.APIKey = r.anthropicKey
	case domain.AIProviderOpenAI:
		s.LLM.APIKey = r.openaiKey
	case domain.AIProviderOllama:
		s.LLM.BaseURL = r.ollamaURL
	}
	if !r.llmModel {
		if m, ok := domain.DefaultLLMModels()[s.LLM.Provider]; ok {
			s.LLM.Model = m
		}
	}
}

func (l *Loader) expandHome(path string) string {
	if path == "~" {
		return l.home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.home, path[2:])
	}
	return path
}
