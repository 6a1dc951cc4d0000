package pinecone

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a data plane handle on one Pinecone index.
type Index struct {
	store      *Store
	name       string
	dimensions int
	baseURL    string
}

type vector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors []vector `json:"vectors"`
}

type queryRequest struct {
	Vector          []float32                    `json:"vector"`
	TopK            int                          `json:"topK"`
	Filter          map[string]map[string]string `json:"filter,omitempty"`
	IncludeMetadata bool                         `json:"includeMetadata"`
	IncludeValues   bool                         `json:"includeValues"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Name returns the index name.
func (i *Index) Name() string {
	return i.name
}

// Dimensions returns the vector size the index was created with.
func (i *Index) Dimensions() int {
	return i.dimensions
}

// Upsert writes chunks in batches. Every vector is checked before the
// first request so a bad batch writes nothing.
func (i *Index) Upsert(ctx context.Context, chunks []domain.IndexedChunk) error {
	for _, c := range chunks {
		if c.ID == "" {
			return fmt.Errorf("%w: chunk id is required", domain.ErrInvalidInput)
		}
		if len(c.Vector) != i.dimensions {
			return &domain.DimensionMismatchError{Expected: i.dimensions, Actual: len(c.Vector), Where: "index " + i.name}
		}
	}

	size := i.store.cfg.BatchSize
	for start := 0; start < len(chunks); start += size {
		end := min(start+size, len(chunks))

		req := upsertRequest{Vectors: make([]vector, 0, end-start)}
		for _, c := range chunks[start:end] {
			req.Vectors = append(req.Vectors, vector{ID: c.ID, Values: c.Vector, Metadata: c.Metadata})
		}

		err := i.store.do(ctx, i.store.data, http.MethodPost, i.baseURL+"/vectors/upsert", req, nil, "upsert "+i.name)
		if err != nil {
			return err
		}
	}

	logger.Debug("Upserted %d vectors into %s", len(chunks), i.name)
	return nil
}

// Query returns the topK nearest vectors. Filter entries become $eq
// conditions, which Pinecone combines with AND.
func (i *Index) Query(ctx context.Context, vec []float32, topK int, filter domain.Filter) ([]domain.Match, error) {
	if len(vec) != i.dimensions {
		return nil, &domain.DimensionMismatchError{Expected: i.dimensions, Actual: len(vec), Where: "index " + i.name}
	}
	if topK <= 0 {
		return []domain.Match{}, nil
	}

	req := queryRequest{Vector: vec, TopK: topK, IncludeMetadata: true}
	if len(filter) > 0 {
		req.Filter = make(map[string]map[string]string, len(filter))
		for k, v := range filter {
			req.Filter[k] = map[string]string{"$eq": v}
		}
	}

	var resp queryResponse
	if err := i.store.do(ctx, i.store.data, http.MethodPost, i.baseURL+"/query", req, &resp, "query "+i.name); err != nil {
		return nil, err
	}

	matches := make([]domain.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, domain.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: toMetadata(m.Metadata),
		})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches, nil
}

// Close is a no-op; the HTTP client belongs to the store.
func (i *Index) Close() error {
	return nil
}

// toMetadata flattens Pinecone metadata values to strings. Lists are
// joined with ", ".
func toMetadata(raw map[string]any) domain.Metadata {
	md := make(domain.Metadata, len(raw))
	for k, v := range raw {
		md[k] = stringify(v)
	}
	return md
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, stringify(e))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}
