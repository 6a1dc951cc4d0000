package cli

import (
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driving"
)

type mockSearchService struct {
	result *domain.SearchResult
	err    error
	calls  int
	last   domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SearchResult{RequestID: "req-empty", Kind: req.Kind}, nil
	}
	return m.result, nil
}

type mockAskService struct {
	result *domain.AskResult
	err    error
	calls  int
	last   domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.AskResult, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.AskResult{
			SearchResult: domain.SearchResult{Kind: req.Kind},
			Query:        req.Query,
			NoMatches:    true,
		}, nil
	}
	return m.result, nil
}

type mockIngestService struct {
	report *domain.IngestReport
	err    error
	calls  int
	kind   domain.Kind
	opts   driving.IngestOptions
}

func (m *mockIngestService) Ingest(_ context.Context, kind domain.Kind, opts driving.IngestOptions) (*domain.IngestReport, error) {
	m.calls++
	m.kind = kind
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return &domain.IngestReport{Kind: kind}, nil
	}
	return m.report, nil
}

type mockIndexService struct {
	indexes  []domain.IndexInfo
	listErr  error
	clearErr error
	cleared  []string
}

func (m *mockIndexService) List(_ context.Context) ([]domain.IndexInfo, error) {
	return m.indexes, m.listErr
}

func (m *mockIndexService) Clear(_ context.Context, names []string) ([]string, error) {
	if m.clearErr != nil {
		return nil, m.clearErr
	}
	m.cleared = append(m.cleared, names...)
	return names, nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	settings *domain.Settings
	search   *mockSearchService
	ask      *mockAskService
	ingest   *mockIngestService
	indexes  *mockIndexService
}

// setupTestServices installs mock services and test settings, and resets
// command flags. Everything is restored when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	s := domain.DefaultSettings()
	s.DataDir = t.TempDir()
	s.Source.BaseID = "appBase"

	ts := &testServices{
		settings: &s,
		search:   &mockSearchService{},
		ask:      &mockAskService{},
		ingest:   &mockIngestService{},
		indexes:  &mockIndexService{},
	}

	origSettings := settings
	origSearch, origAsk := searchService, askService
	origIngest, origIndex := ingestService, indexService
	origPrompts := promptStore
	origNow := now
	origTTY, origStderrTTY := stdinIsTerminal, stderrIsTerminal

	settings = ts.settings
	searchService = ts.search
	askService = ts.ask
	ingestService = ts.ingest
	indexService = ts.indexes
	now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	stdinIsTerminal = func() bool { return false }
	stderrIsTerminal = func() bool { return false }
	resetFlags()

	t.Cleanup(func() {
		closeServices()
		settings = origSettings
		searchService, askService = origSearch, origAsk
		ingestService, indexService = origIngest, origIndex
		promptStore = origPrompts
		now = origNow
		stdinIsTerminal, stderrIsTerminal = origTTY, origStderrTTY
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	return ts
}

// resetFlags puts flag variables back to their defaults between runs.
func resetFlags() {
	verbose = false
	envFile = ""
	searchFlags = queryFlags{domain: "prospects", limit: domain.DefaultTopK}
	searchJSON = false
	askFlags = queryFlags{domain: "prospects", limit: domain.DefaultTopK}
	askStrict = false
	askExportFormat = ""
	askExportPath = ""
	ingestDomain = "prospects"
	ingestBatchSize = 32
	ingestNoProgress = false
	clearForce = false
}
