package driving

import (
	"context"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// SearchService retrieves and renders matches without calling a model.
type SearchService interface {
	// Search embeds the query, queries the domain's index and renders
	// citation-tagged results. No matches is an empty result, not an error.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
}

// AskService answers a question grounded in retrieved records.
type AskService interface {
	// Ask runs retrieval, rendering and one model call. When retrieval is
	// empty it returns NoMatches without calling the model.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResult, error)
}
