package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

func prospectResult() *domain.SearchResult {
	return &domain.SearchResult{
		RequestID: "req-1",
		Kind:      domain.KindProspects,
		Context:   "[SRC1] Entreprise: Acme | Notes: Relance prévue",
		Matches:   []domain.TaggedMatch{{Tag: "SRC1", Position: 1}},
		Rows: []domain.DisplayRow{{
			Tag:   "SRC1",
			Score: 0.912,
			Fields: []domain.DisplayField{
				{Label: "Entreprise", Value: "Acme"},
				{Label: "Secteur", Value: "Fintech"},
			},
			Notes: "Relance prévue",
		}},
		Sources: []domain.SourceLink{{
			Tag:   "SRC1",
			Title: "Acme",
			URL:   "https://airtable.com/appBase/rec1",
		}},
	}
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_PrintsSourcesAndTable(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.result = prospectResult()

	out := mustExecute(t, "search", "fintech à Paris")

	assert.Contains(t, out, "[SRC1] Acme")
	assert.Contains(t, out, "https://airtable.com/appBase/rec1")
	assert.Contains(t, out, "Entreprise")
	assert.Contains(t, out, "Fintech")
	assert.Contains(t, out, "0.912")
	assert.Equal(t, "fintech à Paris", ts.search.last.Query)
	assert.Equal(t, domain.KindProspects, ts.search.last.Kind)
	assert.Equal(t, 10, ts.search.last.TopK)
}

func TestSearchCmd_NoResults(t *testing.T) {
	setupTestServices(t)

	out := mustExecute(t, "search", "nothing")

	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_PassesFlags(t *testing.T) {
	ts := setupTestServices(t)

	mustExecute(t, "search", "--domain", "candidates", "-n", "3",
		"--filter", "ville=Paris", "--filter", "statut=Tous", "go developer")

	assert.Equal(t, domain.KindCandidates, ts.search.last.Kind)
	assert.Equal(t, 3, ts.search.last.TopK)
	assert.Equal(t, domain.Filter{"ville": "Paris", "statut": "Tous"}, ts.search.last.Filters)
}

func TestSearchCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.result = prospectResult()

	out := mustExecute(t, "search", "--json", "fintech")

	var got struct {
		RequestID string           `json:"request_id"`
		Domain    string           `json:"domain"`
		Rows      []map[string]any `json:"rows"`
		Sources   []map[string]any `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "prospects", got.Domain)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "Acme", got.Rows[0]["Entreprise"])
	assert.Equal(t, 0.912, got.Rows[0]["Score"])
	assert.Equal(t, "https://airtable.com/appBase/rec1", got.Sources[0]["url"])
}

func TestSearchCmd_InvalidInputs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown domain", []string{"search", "--domain", "invoices", "q"}, domain.ErrUnsupportedType},
		{"filter without value", []string{"search", "--filter", "secteur", "q"}, domain.ErrInvalidInput},
		{"filter without key", []string{"search", "--filter", "=Fintech", "q"}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServices(t)

			_, err := execute(t, tt.args...)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, ts.search.calls)
		})
	}
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.err = &domain.RetrievalError{Index: "airtable-vectors", Err: errors.New("timeout")}

	_, err := execute(t, "search", "q")

	assert.ErrorIs(t, err, domain.ErrRetrieval)
	assert.Contains(t, err.Error(), "search failed")
}

func TestParseFilters(t *testing.T) {
	f, err := parseFilters([]string{" secteur = Fintech ", "ville=Saint=Denis"})

	require.NoError(t, err)
	assert.Equal(t, domain.Filter{"secteur": "Fintech", "ville": "Saint=Denis"}, f)

	f, err = parseFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, f)
}
