package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// Vectors from one model are deterministic and all have Dimensions() entries.
type EmbeddingService interface {
	// Embed generates a vector embedding for a query.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for document texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
