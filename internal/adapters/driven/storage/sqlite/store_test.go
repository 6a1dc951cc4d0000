package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// openIndex ensures and opens an index in one step.
func openIndex(t *testing.T, store *Store, name string, dims int) driven.VectorIndex {
	t.Helper()
	ctx := context.Background()

	_, err := store.EnsureIndex(ctx, name, dims)
	require.NoError(t, err)
	idx, err := store.Open(ctx, name)
	require.NoError(t, err)
	return idx
}

func testChunk(id string, vec []float32, md domain.Metadata) domain.IndexedChunk {
	sourceID, index, _ := domain.ParseChunkID(id)
	return domain.IndexedChunk{
		ID:       id,
		SourceID: sourceID,
		Index:    index,
		Content:  "content of " + id,
		Vector:   vec,
		Metadata: md,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "vectors.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.EnsureIndex(ctx, "prospects", 2)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	infos, err := store.ListIndexes(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "prospects", infos[0].Name)
	assert.Equal(t, 2, infos[0].Dimension)
}

func TestStore_EnsureIndex_DimensionMismatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.EnsureIndex(ctx, "prospects", 1024)
	require.NoError(t, err)

	_, err = store.EnsureIndex(ctx, "prospects", 1536)
	var dm *domain.DimensionMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 1024, dm.Expected)
	assert.Equal(t, 1536, dm.Actual)
}

func TestStore_EnsureIndex_InvalidInput(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.EnsureIndex(context.Background(), "", 4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Open_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeleteIndex_RemovesChunks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	idx := openIndex(t, store, "prospects", 2)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexedChunk{testChunk("rec1_0", []float32{1, 0}, nil)}))

	require.NoError(t, store.DeleteIndex(ctx, "prospects"))

	var n int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&n))
	assert.Equal(t, 0, n)

	assert.ErrorIs(t, store.DeleteIndex(ctx, "prospects"), domain.ErrNotFound)
}

func TestVectorIndex_Upsert_ReplacesByID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	idx := openIndex(t, store, "prospects", 2)

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedChunk{
		testChunk("rec1_0", []float32{1, 0}, domain.Metadata{"statut": "Nouveau"}),
	}))
	require.NoError(t, idx.Upsert(ctx, []domain.IndexedChunk{
		testChunk("rec1_0", []float32{0, 1}, domain.Metadata{"statut": "Gagné"}),
	}))

	var n int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM chunks WHERE id = 'rec1_0'").Scan(&n))
	assert.Equal(t, 1, n)

	matches, err := idx.Query(ctx, []float32{0, 1}, 10, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	assert.Equal(t, "Gagné", matches[0].Metadata["statut"])
}

func TestVectorIndex_Upsert_RejectsWrongDimension(t *testing.T) {
	store := setupTestStore(t)
	idx := openIndex(t, store, "prospects", 3)

	err := idx.Upsert(context.Background(), []domain.IndexedChunk{testChunk("rec1_0", []float32{1}, nil)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorIndex_Query_EmptyIndex(t *testing.T) {
	store := setupTestStore(t)
	idx := openIndex(t, store, "prospects", 2)

	matches, err := idx.Query(context.Background(), []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestVectorIndex_Query_OrdersAndLimits(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	idx := openIndex(t, store, "prospects", 2)

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedChunk{
		testChunk("far_0", []float32{0, 1}, nil),
		testChunk("near_0", []float32{1, 0}, nil),
		testChunk("mid_0", []float32{1, 1}, nil),
	}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "near_0", matches[0].ID)
	assert.Equal(t, "mid_0", matches[1].ID)
}

func TestVectorIndex_Query_FilterOnMetadata(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	idx := openIndex(t, store, "prospects", 2)

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedChunk{
		testChunk("tech_0", []float32{1, 0}, domain.Metadata{"secteur": "Tech", "statut": "Qualifié"}),
		testChunk("tech2_0", []float32{1, 0}, domain.Metadata{"secteur": "Tech", "statut": "Perdu"}),
		testChunk("retail_0", []float32{1, 0}, domain.Metadata{"secteur": "Retail", "statut": "Qualifié"}),
	}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 10, domain.Filter{"secteur": "Tech"})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = idx.Query(ctx, []float32{1, 0}, 10, domain.Filter{"secteur": "Tech", "statut": "Qualifié"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "tech_0", matches[0].ID)
}

func TestVectorIndex_IsolatedByIndex(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	prospects := openIndex(t, store, "prospects", 2)
	candidates := openIndex(t, store, "candidates", 2)

	require.NoError(t, prospects.Upsert(ctx, []domain.IndexedChunk{testChunk("rec1_0", []float32{1, 0}, nil)}))

	matches, err := candidates.Query(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFloat32Encoding_RoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

func TestFilterQuery_SortedKeys(t *testing.T) {
	query, args := filterQuery("prospects", domain.Filter{"statut": "Gagné", "secteur": "Tech"})

	assert.Contains(t, query, "json_extract(metadata, ?) = ?")
	assert.Equal(t, []any{"prospects", `$."secteur"`, "Tech", `$."statut"`, "Gagné"}, args)
}
