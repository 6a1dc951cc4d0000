package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_DoesNotCreateFile(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_LoadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `data_dir = "/srv/ragbot"

[airtable]
base_id = "appBase"
table = "Leads"

[embedding]
provider = "openai"
dimensions = 1536

[vector]
provider = "sqlite"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/ragbot", store.GetString("data_dir"))
	assert.Equal(t, "appBase", store.GetString("airtable.base_id"))
	assert.Equal(t, "Leads", store.GetString("airtable.table"))
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, 1536, store.GetInt("embedding.dimensions"))
	assert.Equal(t, "sqlite", store.GetString("vector.provider"))
	assert.Equal(t, []string{
		"airtable.base_id", "airtable.table", "data_dir",
		"embedding.dimensions", "embedding.provider", "vector.provider",
	}, store.Keys())
}

func TestConfigStore_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[broken"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", int64(42)))
	require.NoError(t, store.Set("n", 7))
	require.NoError(t, store.Set("b", true))

	assert.Equal(t, "hello", store.GetString("s"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 7, store.GetInt("n"))
	assert.True(t, store.GetBool("b"))

	// Wrong type or missing key gives the zero value
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 0, store.GetInt("s"))
	assert.False(t, store.GetBool("s"))
	assert.Equal(t, "", store.GetString("missing"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_SetIsNotPersistedUntilSave(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("vector.provider", "memory"))
	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Save())

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "memory", reopened.GetString("vector.provider"))
}

func TestConfigStore_SaveWritesTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("llm.max_tokens", 512))
	require.NoError(t, store.Save())

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "ollama")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SetRejectsValueTableConflict(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm", "anthropic"))
	err = store.Set("llm.model", "claude")
	require.ErrorIs(t, err, ErrKeyConflict)

	require.NoError(t, store.Set("vector.provider", "memory"))
	err = store.Set("vector", "pinecone")
	require.ErrorIs(t, err, ErrKeyConflict)

	// Overwriting the same key and sharing a name prefix are fine.
	require.NoError(t, store.Set("vector.provider", "sqlite"))
	require.NoError(t, store.Set("vectors", "x"))

	require.NoError(t, store.Save())
	reopened, err := NewConfigStore(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", reopened.GetString("llm"))
	assert.Equal(t, "sqlite", reopened.GetString("vector.provider"))
}

func TestConfigStore_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.Path(), []byte("[vector]\nprovider = \"sqlite\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, "sqlite", store.GetString("vector.provider"))
}

func TestFlattenMap(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": "x"},
		},
		"e": true,
	}

	flat := flattenMap(nested, "")

	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "e": true}, flat)
	assert.Equal(t, nested, unflattenMap(flat))
}
