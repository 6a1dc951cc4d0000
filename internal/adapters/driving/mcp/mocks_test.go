package mcp

import (
	"context"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result *domain.SearchResult
	err    error
	last   domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SearchResult{Kind: req.Kind}, nil
	}
	return m.result, nil
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	result *domain.AskResult
	err    error
	last   domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.AskResult, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	indexes []domain.IndexInfo
	err     error
}

func (m *mockIndexService) List(_ context.Context) ([]domain.IndexInfo, error) {
	return m.indexes, m.err
}

func (m *mockIndexService) Clear(_ context.Context, names []string) ([]string, error) {
	return names, m.err
}

func sampleResult() *domain.SearchResult {
	return &domain.SearchResult{
		RequestID: "req-1",
		Kind:      domain.KindProspects,
		Context:   "[SRC1] Entreprise: Acme",
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
		Matches: []domain.TaggedMatch{{Tag: "SRC1"}},
	}
}
