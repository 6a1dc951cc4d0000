package services

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Known texts map to fixed vectors; anything else gets a stable hash vector.
type mockEmbeddingService struct {
	dims     int
	vectors  map[string][]float32
	embedErr error
	batchErr error

	// wrongDims makes every vector one entry short.
	wrongDims bool

	mu         sync.Mutex
	embedCalls int
	batchCalls int
	batchSizes []int
}

var _ driven.EmbeddingService = (*mockEmbeddingService)(nil)

func newMockEmbedder(dims int) *mockEmbeddingService {
	return &mockEmbeddingService{dims: dims, vectors: map[string][]float32{}}
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()
	n := m.dims
	if m.wrongDims {
		n--
	}
	v := make([]float32, n)
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed%1000)/1000 + 0.001
	}
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dims }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

// mockVectorIndex implements driven.VectorIndex with canned matches.
type mockVectorIndex struct {
	name     string
	matches  []domain.Match
	queryErr error

	lastTopK   int
	lastFilter domain.Filter
	queries    int
}

var _ driven.VectorIndex = (*mockVectorIndex)(nil)

func (m *mockVectorIndex) Name() string { return m.name }

func (m *mockVectorIndex) Upsert(context.Context, []domain.IndexedChunk) error {
	return errors.New("read-only mock")
}

func (m *mockVectorIndex) Query(_ context.Context, _ []float32, topK int, filter domain.Filter) ([]domain.Match, error) {
	m.queries++
	m.lastTopK = topK
	m.lastFilter = filter
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var out []domain.Match
	for _, match := range m.matches {
		if filter.Matches(match.Metadata) {
			out = append(out, match)
		}
	}
	return out, nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockLLMService implements driven.LLMService and records every call.
type mockLLMService struct {
	reply string
	err   error

	// replyFn takes precedence over reply when set
	replyFn func(system, human string) string

	calls      int
	lastSystem string
	lastHuman  string
	lastOpts   driven.CompleteOptions
}

var _ driven.LLMService = (*mockLLMService)(nil)

func (m *mockLLMService) Complete(_ context.Context, system, human string, opts driven.CompleteOptions) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastHuman = human
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	if m.replyFn != nil {
		return m.replyFn(system, human), nil
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// mockPromptStore implements driven.PromptStore from a map.
type mockPromptStore struct {
	prompts map[string]string
	reloads int
}

var _ driven.PromptStore = (*mockPromptStore)(nil)

func newMockPrompts() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		domain.PersonaSalesBot:   "Tu es SalesBot.",
		domain.PersonaRecruitBot: "Tu es RecruitBot.",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() { m.reloads++ }

// mockRecordSource implements driven.RecordSource.
type mockRecordSource struct {
	records map[string][]domain.Record
	err     error
	base    string
	tables  []string
}

var _ driven.RecordSource = (*mockRecordSource)(nil)

func (m *mockRecordSource) ListRecords(_ context.Context, table string) ([]domain.Record, error) {
	m.tables = append(m.tables, table)
	if m.err != nil {
		return nil, m.err
	}
	return m.records[table], nil
}

func (m *mockRecordSource) BaseID() string { return m.base }

// mockProgress implements driving.Progress.
type mockProgress struct {
	total      int
	increments int
	finished   bool
}

func (m *mockProgress) Start(total int) { m.total = total }
func (m *mockProgress) Increment() { m.increments++ }
func (m *mockProgress) Finish() { m.finished = true }

// scoredMatch builds a prospect match with its metadata.
func scoredMatch(id string, score float64, md domain.Metadata) domain.Match {
	if md == nil {
		md = domain.Metadata{}
	}
	if _, ok := md[domain.MetaSourceID]; !ok {
		md[domain.MetaSourceID] = id
	}
	return domain.Match{ID: domain.ChunkID(id, 0), Score: score, Metadata: md}
}
