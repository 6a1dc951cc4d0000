package driven

import (
	"context"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// Chunker splits a normalised record into indexed chunks.
// Chunk IDs must be deterministic for a given record and content.
type Chunker interface {
	// Name returns the chunker identifier for logging.
	Name() string

	// Process returns the record's chunks without vectors.
	Process(ctx context.Context, rec domain.NormalizedRecord) ([]domain.IndexedChunk, error)
}
