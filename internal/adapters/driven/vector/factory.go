// Package vector selects the vector store backend and prepares the indexes
// each domain needs.
package vector

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/ragbot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragbot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragbot/internal/adapters/driven/vector/pinecone"
	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// NewStore creates the vector store the settings name.
func NewStore(settings domain.Settings) (driven.VectorStore, error) {
	switch settings.Vector.Provider {
	case domain.VectorProviderPinecone:
		return pinecone.NewStore(pinecone.Config{
			APIKey: settings.Vector.APIKey,
			Cloud:  settings.Vector.Cloud,
			Region: settings.Vector.Region,
		})

	case domain.VectorProviderSQLite:
		if settings.DataDir == "" {
			return nil, &domain.ConfigurationError{Missing: []string{domain.EnvDataDir}}
		}
		return sqlite.NewStore(filepath.Join(settings.DataDir, "data"))

	case domain.VectorProviderMemory:
		logger.Warn("Using the in-memory vector store: vectors are lost when the process exits")
		return memory.NewVectorStore(), nil

	default:
		return nil, &domain.ConfigurationError{Reason: "unsupported vector provider " + string(settings.Vector.Provider)}
	}
}

// OpenIndexes ensures the index of every kind exists with the embedding
// dimension, creating missing ones, and opens them.
func OpenIndexes(ctx context.Context, store driven.VectorStore, settings domain.Settings, kinds ...domain.Kind) (map[domain.Kind]driven.VectorIndex, error) {
	indexes := make(map[domain.Kind]driven.VectorIndex, len(kinds))
	closeAll := func() {
		for _, idx := range indexes {
			_ = idx.Close()
		}
	}

	for _, kind := range kinds {
		name := settings.IndexFor(kind)
		info, err := store.EnsureIndex(ctx, name, settings.Embedding.Dimensions)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("prepare index %s: %w", name, err)
		}
		logger.Debug("Index %s ready (%d dimensions, %s)", info.Name, info.Dimension, info.Metric)

		idx, err := store.Open(ctx, name)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("open index %s: %w", name, err)
		}
		indexes[kind] = idx
	}

	return indexes, nil
}
