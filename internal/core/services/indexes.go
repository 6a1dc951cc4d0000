package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/core/ports/driving"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService lists and deletes vector indexes.
type IndexService struct {
	store driven.VectorStore
}

// NewIndexService creates an index service.
func NewIndexService(store driven.VectorStore) *IndexService {
	return &IndexService{store: store}
}

// List returns every index under the configured credential.
func (s *IndexService) List(ctx context.Context) ([]domain.IndexInfo, error) {
	indexes, err := s.store.ListIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	return indexes, nil
}

// Clear deletes the named indexes in order and stops at the first failure.
func (s *IndexService) Clear(ctx context.Context, names []string) ([]string, error) {
	deleted := make([]string, 0, len(names))
	for _, name := range names {
		if err := s.store.DeleteIndex(ctx, name); err != nil {
			return deleted, fmt.Errorf("delete index %s: %w", name, err)
		}
		logger.Info("Deleted index %s", name)
		deleted = append(deleted, name)
	}
	return deleted, nil
}
