// Package memory provides in-memory vector storage for tests and offline runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Data lives for the lifetime of the process.
type VectorStore struct {
	mu      sync.RWMutex
	indexes map[string]*VectorIndex
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		indexes: make(map[string]*VectorIndex),
	}
}

// ListIndexes returns every index sorted by name.
func (s *VectorStore) ListIndexes(_ context.Context) ([]domain.IndexInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.IndexInfo, 0, len(s.indexes))
	for _, idx := range s.indexes {
		infos = append(infos, idx.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// EnsureIndex creates the named index if it does not exist.
func (s *VectorStore) EnsureIndex(_ context.Context, name string, dimensions int) (domain.IndexInfo, error) {
	if name == "" {
		return domain.IndexInfo{}, fmt.Errorf("%w: index name is required", domain.ErrInvalidInput)
	}
	if dimensions <= 0 {
		return domain.IndexInfo{}, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indexes[name]; ok {
		if idx.dimensions != dimensions {
			return domain.IndexInfo{}, &domain.DimensionMismatchError{
				Expected: idx.dimensions,
				Actual:   dimensions,
				Where:    "index " + name,
			}
		}
		return idx.info(), nil
	}

	idx := NewVectorIndex(name, dimensions)
	s.indexes[name] = idx
	return idx.info(), nil
}

// Open returns the named index.
func (s *VectorStore) Open(_ context.Context, name string) (driven.VectorIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[name]
	if !ok {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	return idx, nil
}

// DeleteIndex removes the named index and its vectors.
func (s *VectorStore) DeleteIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[name]; !ok {
		return fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	delete(s.indexes, name)
	return nil
}

// Close is a no-op for the memory store.
func (s *VectorStore) Close() error {
	return nil
}

// VectorIndex holds the chunks of one index, keyed by chunk ID.
type VectorIndex struct {
	name       string
	dimensions int

	mu     sync.RWMutex
	chunks map[string]domain.IndexedChunk
}

// NewVectorIndex creates a standalone index. Most callers go through
// VectorStore.EnsureIndex instead.
func NewVectorIndex(name string, dimensions int) *VectorIndex {
	return &VectorIndex{
		name:       name,
		dimensions: dimensions,
		chunks:     make(map[string]domain.IndexedChunk),
	}
}

// Name returns the index name.
func (x *VectorIndex) Name() string {
	return x.name
}

// Len returns the number of stored chunks.
func (x *VectorIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

// Get returns a stored chunk by ID.
func (x *VectorIndex) Get(id string) (domain.IndexedChunk, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	c, ok := x.chunks[id]
	return c, ok
}

// Upsert stores chunks, replacing any with the same ID.
// The whole batch is rejected if one vector has the wrong length.
func (x *VectorIndex) Upsert(_ context.Context, chunks []domain.IndexedChunk) error {
	for _, c := range chunks {
		if c.ID == "" {
			return fmt.Errorf("%w: chunk ID is required", domain.ErrInvalidInput)
		}
		if len(c.Vector) != x.dimensions {
			return &domain.DimensionMismatchError{
				Expected: x.dimensions,
				Actual:   len(c.Vector),
				Where:    "index " + x.name,
			}
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for _, c := range chunks {
		stored := c
		stored.Vector = append([]float32(nil), c.Vector...)
		stored.Metadata = c.Metadata.Clone()
		x.chunks[c.ID] = stored
	}
	return nil
}

// Query scores every chunk by cosine similarity.
func (x *VectorIndex) Query(_ context.Context, vector []float32, topK int, filter domain.Filter) ([]domain.Match, error) {
	if len(vector) != x.dimensions {
		return nil, &domain.DimensionMismatchError{
			Expected: x.dimensions,
			Actual:   len(vector),
			Where:    "index " + x.name,
		}
	}

	x.mu.RLock()
	matches := make([]domain.Match, 0, len(x.chunks))
	for _, c := range x.chunks {
		if !filter.Matches(c.Metadata) {
			continue
		}
		matches = append(matches, domain.Match{
			ID:       c.ID,
			Score:    domain.CosineSimilarity(vector, c.Vector),
			Metadata: c.Metadata.Clone(),
		})
	}
	x.mu.RUnlock()

	sortMatches(matches)
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Close is a no-op for the memory index.
func (x *VectorIndex) Close() error {
	return nil
}

func (x *VectorIndex) info() domain.IndexInfo {
	return domain.IndexInfo{
		Name:      x.name,
		Dimension: x.dimensions,
		Metric:    domain.DefaultMetric,
		Host:      ":memory:",
		Ready:     true,
	}
}

// sortMatches orders by descending score, then by ID for equal scores.
func sortMatches(m []domain.Match) {
	sort.Slice(m, func(i, j int) bool {
		if m[i].Score != m[j].Score {
			return m[i].Score > m[j].Score
		}
		return m[i].ID < m[j].ID
	})
}
