package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/core/ports/driving"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService retrieves and renders matches for a domain.
type SearchService struct {
	embedder   driven.EmbeddingService
	indexes    map[domain.Kind]driven.VectorIndex
	dimensions int
	baseID     string
	newID      func() string
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithBaseID sets the data source base used in record links.
func WithBaseID(baseID string) SearchOption {
	return func(s *SearchService) {
		s.baseID = baseID
	}
}

// WithDimensions sets the expected query vector size.
func WithDimensions(n int) SearchOption {
	return func(s *SearchService) {
		s.dimensions = n
	}
}

// NewSearchService creates a search service over one index per domain.
func NewSearchService(
	embedder driven.EmbeddingService,
	indexes map[domain.Kind]driven.VectorIndex,
	opts ...SearchOption,
) *SearchService {
	s := &SearchService{
		embedder: embedder,
		indexes:  indexes,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search embeds the query, queries the domain's index and renders the matches.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	logger.Section("Retrieve")

	profile, index, err := s.resolve(req.Kind)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	requestID := s.newID()
	logger.WithFields(logger.Fields{
		"request": requestID,
		"domain":  profile.Kind,
		"index":   index.Name(),
		"top_k":   req.TopK,
	}).Debug("search")

	matches, err := NewRetriever(s.embedder, index, s.dimensions).Retrieve(ctx, query, req.Filters, req.TopK)
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		return nil, err
	}

	logger.Section("Render")
	notes := req.NotesTruncate
	if notes <= 0 {
		notes = profile.NotesTruncate
	}
	text, tagged := Render(matches, ProfileTemplate(profile), notes)
	logger.Debug("Rendered %d context lines", len(tagged))

	return &domain.SearchResult{
		RequestID: requestID,
		Kind:      profile.Kind,
		Context:   text,
		Matches:   tagged,
		Rows:      DisplayRows(tagged, profile),
		Sources:   SourceLinks(tagged, profile, s.baseID),
	}, nil
}

func (s *SearchService) resolve(kind domain.Kind) (domain.Profile, driven.VectorIndex, error) {
	if kind == "" {
		kind = domain.KindProspects
	}
	profile, err := domain.ProfileFor(kind)
	if err != nil {
		return domain.Profile{}, nil, fmt.Errorf("%w: domain %q", err, kind)
	}
	index, ok := s.indexes[kind]
	if !ok || index == nil {
		return domain.Profile{}, nil, &domain.ConfigurationError{Reason: "no vector index configured for " + string(kind)}
	}
	return profile, index, nil
}
