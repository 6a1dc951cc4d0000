package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/core/ports/driving"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultBatchSize is the number of chunks embedded per call.
const DefaultBatchSize = 32

// IngestService copies source tables into vector indexes.
type IngestService struct {
	source   driven.RecordSource
	embedder driven.EmbeddingService
	chunker  driven.Chunker
	indexes  map[domain.Kind]driven.VectorIndex
	tables   map[domain.Kind]string
	now      func() time.Time
}

// NewIngestService creates an ingest service. tables maps each domain to its
// source table name.
func NewIngestService(
	source driven.RecordSource,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
	indexes map[domain.Kind]driven.VectorIndex,
	tables map[domain.Kind]string,
) *IngestService {
	return &IngestService{
		source:   source,
		embedder: embedder,
		chunker:  chunker,
		indexes:  indexes,
		tables:   tables,
		now:      time.Now,
	}
}

// Ingest reads every record of the domain's table and upserts its chunks.
// Records without any mapped value are skipped. Chunk IDs are derived from
// the record ID, so a second run overwrites rather than duplicates.
func (s *IngestService) Ingest(ctx context.Context, kind domain.Kind, opts driving.IngestOptions) (*domain.IngestReport, error) {
	profile, err := domain.ProfileFor(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: domain %q", err, kind)
	}
	index, ok := s.indexes[kind]
	if !ok || index == nil {
		return nil, &domain.ConfigurationError{Reason: "no vector index configured for " + string(kind)}
	}
	table := s.tables[kind]
	if table == "" {
		return nil, &domain.ConfigurationError{Reason: "no source table configured for " + string(kind)}
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	started := s.now()
	report := &domain.IngestReport{Kind: kind, Table: table, Index: index.Name()}

	logger.Section("Ingest " + string(kind))
	records, err := s.source.ListRecords(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("list records from %s: %w", table, err)
	}
	report.RecordsRead = len(records)
	logger.Info("Loaded %d records from %s", len(records), table)

	progress := opts.Progress
	if progress != nil {
		progress.Start(len(records))
		defer progress.Finish()
	}

	pending := make([]domain.IndexedChunk, 0, batchSize)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		norm, ok := Normalize(rec, profile.Schema)
		if !ok {
			report.RecordsSkipped++
			logger.Debug("Skipping record %s: no mapped content", rec.ID)
			if progress != nil {
				progress.Increment()
			}
			continue
		}

		chunks, err := s.chunker.Process(ctx, norm)
		if err != nil {
			return nil, fmt.Errorf("chunk record %s: %w", rec.ID, err)
		}
		if profile.KeepText {
			for i := range chunks {
				chunks[i].Metadata[domain.MetaText] = chunks[i].Content
			}
		}
		pending = append(pending, chunks...)

		if len(pending) >= batchSize {
			if err := s.flush(ctx, index, pending); err != nil {
				return nil, err
			}
			report.ChunksWritten += len(pending)
			pending = pending[:0]
		}
		if progress != nil {
			progress.Increment()
		}
	}

	if len(pending) > 0 {
		if err := s.flush(ctx, index, pending); err != nil {
			return nil, err
		}
		report.ChunksWritten += len(pending)
	}

	report.Duration = s.now().Sub(started)
	logger.WithFields(logger.Fields{
		"domain":  kind,
		"index":   report.Index,
		"records": report.RecordsRead,
		"skipped": report.RecordsSkipped,
		"chunks":  report.ChunksWritten,
	}).Info("ingest complete")

	return report, nil
}

// flush embeds and upserts one batch of chunks.
func (s *IngestService) flush(ctx context.Context, index driven.VectorIndex, chunks []domain.IndexedChunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return &domain.EmbeddingError{Model: s.embedder.ModelName(), Err: err}
	}
	if len(vectors) != len(chunks) {
		return &domain.EmbeddingError{
			Model: s.embedder.ModelName(),
			Err:   fmt.Errorf("got %d vectors for %d texts", len(vectors), len(chunks)),
		}
	}

	dims := s.embedder.Dimensions()
	for i := range chunks {
		if len(vectors[i]) != dims {
			return &domain.EmbeddingError{
				Model: s.embedder.ModelName(),
				Err:   &domain.DimensionMismatchError{Expected: dims, Actual: len(vectors[i]), Where: "chunk " + chunks[i].ID},
			}
		}
		chunks[i].Vector = vectors[i]
	}

	if err := index.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("upsert %d chunks into %s: %w", len(chunks), index.Name(), err)
	}
	logger.Debug("Upserted %d chunks into %s", len(chunks), index.Name())
	return nil
}
