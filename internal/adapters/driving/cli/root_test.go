package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

func TestRootCmd_Flags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("env-file"))
}

func TestRootCmd_MissingEnvFile(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "--env-file", "/does/not/exist.env", "version")

	assert.Error(t, err)
}

func TestParseKindFlag(t *testing.T) {
	kind, err := parseKindFlag("")
	require.NoError(t, err)
	assert.Equal(t, domain.KindProspects, kind)

	kind, err = parseKindFlag("candidates")
	require.NoError(t, err)
	assert.Equal(t, domain.KindCandidates, kind)

	_, err = parseKindFlag("leads")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestWiring_FromSettings(t *testing.T) {
	ts := setupTestServices(t)
	localSettings(ts, newOllamaServer(t, true).URL)
	ts.settings.Source.APIKey = "patTEST"
	searchService, askService, ingestService, indexService = nil, nil, nil, nil
	ctx := context.Background()

	require.NoError(t, ensureSearchService(ctx, domain.KindProspects))
	require.NoError(t, ensureAskService(ctx, domain.KindProspects))
	require.NoError(t, ensureIngestService(ctx, domain.KindCandidates))
	require.NoError(t, ensureIndexService())

	assert.NotNil(t, searchService)
	assert.NotNil(t, askService)
	assert.NotNil(t, ingestService)
	assert.NotNil(t, indexService)
	assert.NotEmpty(t, closers)

	closeServices()
	assert.Empty(t, closers)
}

func TestWiring_ValidatesForPurpose(t *testing.T) {
	ts := setupTestServices(t)
	localSettings(ts, "http://localhost:0")
	ingestService = nil

	err := ensureIngestService(context.Background(), domain.KindProspects)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Missing, domain.EnvAirtableAPIKey)
}

func TestLoadSettings_UsesInjectedSettings(t *testing.T) {
	ts := setupTestServices(t)

	s, err := loadSettings()

	require.NoError(t, err)
	assert.Equal(t, ts.settings.DataDir, s.DataDir)
}
