package driving

import (
	"context"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// IngestService copies a source table into its vector index.
type IngestService interface {
	// Ingest reads, normalises, chunks, embeds and upserts every record of
	// the domain's table.
	Ingest(ctx context.Context, kind domain.Kind, opts IngestOptions) (*domain.IngestReport, error)
}

// IngestOptions tunes one ingest run.
type IngestOptions struct {
	// BatchSize is the number of chunks embedded and upserted together.
	BatchSize int

	// Progress receives one increment per record. May be nil.
	Progress Progress
}

// Progress reports advancement of a long-running operation.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}
