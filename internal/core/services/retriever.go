package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// Retriever embeds a query and runs a filtered similarity search on one index.
type Retriever struct {
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	dimensions int
}

// NewRetriever creates a retriever. dimensions is the configured vector size;
// zero trusts the embedder's own value.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, dimensions int) *Retriever {
	if dimensions <= 0 {
		dimensions = embedder.Dimensions()
	}
	return &Retriever{
		embedder:   embedder,
		index:      index,
		dimensions: dimensions,
	}
}

// Retrieve returns at most topK matches by descending score.
// Filter entries that are empty or "Tous"/"All" are ignored.
// An empty index yields an empty slice and a nil error.
func (r *Retriever) Retrieve(ctx context.Context, query string, filters domain.Filter, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	vec, err := r.embedder.Embed(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, &domain.EmbeddingError{Model: r.embedder.ModelName(), Err: err}
	}
	if len(vec) != r.dimensions {
		return nil, &domain.EmbeddingError{
			Model: r.embedder.ModelName(),
			Err:   &domain.DimensionMismatchError{Expected: r.dimensions, Actual: len(vec), Where: "query embedding"},
		}
	}
	logger.Debug("Query embedded with %s (%d dims)", r.embedder.ModelName(), len(vec))

	filter := filters.Effective()
	if len(filter) > 0 {
		logger.Debug("Metadata filter: %v", filter)
	}

	matches, err := r.index.Query(ctx, vec, topK, filter)
	if err != nil {
		return nil, &domain.RetrievalError{Index: r.index.Name(), Err: err}
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	if matches == nil {
		matches = []domain.Match{}
	}

	logger.Debug("Index %s returned %d matches", r.index.Name(), len(matches))
	return matches, nil
}
