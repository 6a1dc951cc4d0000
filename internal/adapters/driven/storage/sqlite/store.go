package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragbot/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store holding any number of indexes.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ragbot/data/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragbot", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every NNN_name.up.sql newer than the recorded version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ListIndexes returns every index with its dimension, sorted by name.
func (s *Store) ListIndexes(ctx context.Context) ([]domain.IndexInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, dimension, metric FROM indexes ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying indexes: %w", err)
	}
	defer rows.Close()

	var infos []domain.IndexInfo
	for rows.Next() {
		info := domain.IndexInfo{Host: s.path, Ready: true}
		if err := rows.Scan(&info.Name, &info.Dimension, &info.Metric); err != nil {
			return nil, fmt.Errorf("scanning index: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// EnsureIndex creates the index row if it is missing.
func (s *Store) EnsureIndex(ctx context.Context, name string, dimensions int) (domain.IndexInfo, error) {
	if name == "" {
		return domain.IndexInfo{}, fmt.Errorf("%w: index name is required", domain.ErrInvalidInput)
	}
	if dimensions <= 0 {
		return domain.IndexInfo{}, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO indexes (name, dimension, metric) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING",
		name, dimensions, domain.DefaultMetric)
	if err != nil {
		return domain.IndexInfo{}, fmt.Errorf("creating index %s: %w", name, err)
	}

	info, err := s.describe(ctx, name)
	if err != nil {
		return domain.IndexInfo{}, err
	}
	if info.Dimension != dimensions {
		return domain.IndexInfo{}, &domain.DimensionMismatchError{
			Expected: info.Dimension,
			Actual:   dimensions,
			Where:    "index " + name,
		}
	}
	return info, nil
}

// Open returns a handle on an existing index.
func (s *Store) Open(ctx context.Context, name string) (driven.VectorIndex, error) {
	info, err := s.describe(ctx, name)
	if err != nil {
		return nil, err
	}
	return &vectorIndex{store: s, name: name, dimensions: info.Dimension}, nil
}

// DeleteIndex removes the index and, through the foreign key, its chunks.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM indexes WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting index %s: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) describe(ctx context.Context, name string) (domain.IndexInfo, error) {
	info := domain.IndexInfo{Name: name, Host: s.path, Ready: true}
	err := s.db.QueryRowContext(ctx,
		"SELECT dimension, metric FROM indexes WHERE name = ?", name,
	).Scan(&info.Dimension, &info.Metric)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.IndexInfo{}, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return domain.IndexInfo{}, fmt.Errorf("describing index %s: %w", name, err)
	}
	return info, nil
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex over the chunks table.
type vectorIndex struct {
	store      *Store
	name       string
	dimensions int
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Name returns the index name.
func (x *vectorIndex) Name() string {
	return x.name
}

// Upsert writes chunks in one transaction, replacing rows with the same ID.
func (x *vectorIndex) Upsert(ctx context.Context, chunks []domain.IndexedChunk) error {
	for _, c := range chunks {
		if len(c.Vector) != x.dimensions {
			return &domain.DimensionMismatchError{
				Expected: x.dimensions,
				Actual:   len(c.Vector),
				Where:    "index " + x.name,
			}
		}
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (index_name, id, source_id, chunk_index, content, embedding, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(index_name, id) DO UPDATE SET
			source_id = excluded.source_id,
			chunk_index = excluded.chunk_index,
			content = excluded.content,
			embedding = excluded.embedding,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", c.ID, err)
		}
		if c.Metadata == nil {
			metadataJSON = []byte("{}")
		}
		if _, err := stmt.ExecContext(ctx, x.name, c.ID, c.SourceID, c.Index, c.Content,
			float32SliceToBytes(c.Vector), string(metadataJSON)); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Query narrows rows by metadata equality and ranks them by cosine similarity.
func (x *vectorIndex) Query(ctx context.Context, vector []float32, topK int, filter domain.Filter) ([]domain.Match, error) {
	if len(vector) != x.dimensions {
		return nil, &domain.DimensionMismatchError{
			Expected: x.dimensions,
			Actual:   len(vector),
			Where:    "index " + x.name,
		}
	}

	query, args := filterQuery(x.name, filter)
	rows, err := x.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	matches := []domain.Match{}
	for rows.Next() {
		var (
			id           string
			embedding    []byte
			metadataJSON string
		)
		if err := rows.Scan(&id, &embedding, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		var md domain.Metadata
		if err := json.Unmarshal([]byte(metadataJSON), &md); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", id, err)
		}
		matches = append(matches, domain.Match{
			ID:       id,
			Score:    domain.CosineSimilarity(vector, bytesToFloat32Slice(embedding)),
			Metadata: md,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Close is a no-op; the store owns the connection.
func (x *vectorIndex) Close() error {
	return nil
}

// ==================== Helper Functions ====================

// filterQuery builds the candidate query. Each filter entry becomes a
// json_extract equality on the metadata column, in sorted key order.
func filterQuery(index string, filter domain.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT id, embedding, metadata FROM chunks WHERE index_name = ?")
	args := []any{index}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(" AND json_extract(metadata, ?) = ?")
		args = append(args, jsonPath(k), filter[k])
	}
	return b.String(), args
}

// jsonPath quotes a metadata key as a JSON path member.
func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
