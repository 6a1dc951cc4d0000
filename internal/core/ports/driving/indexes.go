package driving

import (
	"context"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// IndexService administers vector indexes.
type IndexService interface {
	// List returns every index under the configured credential.
	List(ctx context.Context) ([]domain.IndexInfo, error)

	// Clear deletes the named indexes and returns the names deleted.
	// It stops at the first failure.
	Clear(ctx context.Context, names []string) ([]string, error)
}
