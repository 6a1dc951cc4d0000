package driven

import (
	"context"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// VectorIndex is one named index of vectors with metadata.
type VectorIndex interface {
	// Name returns the index name.
	Name() string

	// Upsert writes chunks. An existing chunk with the same ID is replaced.
	Upsert(ctx context.Context, chunks []domain.IndexedChunk) error

	// Query returns up to topK matches by descending similarity.
	// A nil or empty filter means no constraint. An empty index returns
	// an empty slice and no error.
	Query(ctx context.Context, vector []float32, topK int, filter domain.Filter) ([]domain.Match, error)

	// Close releases resources.
	Close() error
}

// VectorStore administers indexes under one credential.
type VectorStore interface {
	// ListIndexes returns every index visible to the credential.
	ListIndexes(ctx context.Context) ([]domain.IndexInfo, error)

	// EnsureIndex creates the index if missing and waits until it is ready.
	// An existing index with another dimension yields a
	// *domain.DimensionMismatchError.
	EnsureIndex(ctx context.Context, name string, dimensions int) (domain.IndexInfo, error)

	// Open returns a handle on an existing index.
	Open(ctx context.Context, name string) (VectorIndex, error)

	// DeleteIndex removes an index and all its vectors.
	DeleteIndex(ctx context.Context, name string) error

	// Close releases resources.
	Close() error
}
