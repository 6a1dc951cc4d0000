package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

func TestConfigShow_MasksSecrets(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.Source.APIKey = "patABCDEFGHIJKLMNOP"
	ts.settings.Vector.APIKey = "pcsk_1234567890"
	ts.settings.LLM.APIKey = "sk-ant-secret-value"

	out := mustExecute(t, "config", "show")

	assert.Contains(t, out, "patA...MNOP")
	assert.Contains(t, out, "pcsk...7890")
	assert.Contains(t, out, "sk-a...alue")
	assert.NotContains(t, out, "patABCDEFGHIJKLMNOP")
	assert.Contains(t, out, "appBase")
	assert.Contains(t, out, "amazon.titan-embed-text-v2:0")
	assert.Contains(t, out, "airtable-vectors")
	assert.Contains(t, out, "candidate-vectors")
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "(not set)"},
		{"short", "****"},
		{"12345678", "****"},
		{"123456789", "1234...6789"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, maskAPIKey(tt.key), tt.key)
	}
}

func TestConfigSet_WritesFile(t *testing.T) {
	setupTestServices(t)
	dir := t.TempDir()
	t.Setenv(domain.EnvDataDir, dir)

	out := mustExecute(t, "config", "set", "airtable.base_id", "appXYZ")
	assert.Contains(t, out, "Set airtable.base_id")

	mustExecute(t, "config", "set", "embedding.dimensions", "512")

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "appXYZ")
	assert.Contains(t, string(data), "dimensions = 512")
}

func newOllamaServer(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy && r.URL.Path == "/api/tags" {
			fmt.Fprint(w, `{"models":[]}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	return server
}

func localSettings(ts *testServices, baseURL string) {
	ts.settings.Embedding = domain.EmbeddingSettings{
		Provider:   domain.AIProviderOllama,
		Model:      "nomic-embed-text",
		Dimensions: 768,
		BaseURL:    baseURL,
	}
	ts.settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
		BaseURL:  baseURL,
	}
	ts.settings.Vector.Provider = domain.VectorProviderMemory
}

func TestConfigCheck(t *testing.T) {
	t.Run("all providers answer", func(t *testing.T) {
		ts := setupTestServices(t)
		localSettings(ts, newOllamaServer(t, true).URL)

		out := mustExecute(t, "config", "check")

		assert.Contains(t, out, "✓ embedding (Ollama")
		assert.Contains(t, out, "✓ llm (Ollama")
		assert.Contains(t, out, "✓ vector store")
	})

	t.Run("unreachable provider fails", func(t *testing.T) {
		ts := setupTestServices(t)
		localSettings(ts, newOllamaServer(t, false).URL)

		out, err := execute(t, "config", "check")

		assert.ErrorContains(t, err, "2 check(s) failed")
		assert.Contains(t, out, "✗ embedding")
		assert.Contains(t, out, "✗ llm")
		assert.Contains(t, out, "✓ vector store")
	})
}
