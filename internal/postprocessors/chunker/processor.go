// Package chunker splits record text into overlapping, boundary-aligned pieces.
package chunker

import (
	"context"
	"strconv"
	"unicode"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
)

// DefaultChunkSize is the default maximum number of characters per chunk.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// defaultSeparators are tried in order when choosing where a chunk ends.
var defaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Span locates one piece of content by rune offsets.
// Overlap is the number of runes shared with the previous span.
type Span struct {
	Start   int
	End     int
	Overlap int
}

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into chunks of at most chunkSize characters.
// Lengths are counted in runes.
type Processor struct {
	chunkSize  int
	overlap    int
	separators [][]rune
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the preferred break points, highest priority first.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		p.separators = toRunes(seps)
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: toRunes(defaultSeparators),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk length.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split returns the pieces of content. Content no longer than the chunk size
// comes back as a single piece equal to content.
func (p *Processor) Split(content string) []string {
	runes := []rune(content)
	spans := p.spans(runes)
	pieces := make([]string, len(spans))
	for i, s := range spans {
		pieces[i] = string(runes[s.Start:s.End])
	}
	return pieces
}

// Spans returns the rune offsets Split would cut content at.
func (p *Processor) Spans(content string) []Span {
	return p.spans([]rune(content))
}

// Process turns a normalised record into indexed chunks with deterministic IDs.
// Vectors are left empty for the embedding stage.
func (p *Processor) Process(_ context.Context, rec domain.NormalizedRecord) ([]domain.IndexedChunk, error) {
	if rec.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	pieces := p.Split(rec.Content)
	chunks := make([]domain.IndexedChunk, 0, len(pieces))

	for i, piece := range pieces {
		md := rec.Metadata.Clone()
		md[domain.MetaSourceID] = rec.SourceID
		md[domain.MetaChunkIndex] = strconv.Itoa(i)

		chunks = append(chunks, domain.IndexedChunk{
			ID:       domain.ChunkID(rec.SourceID, i),
			SourceID: rec.SourceID,
			Index:    i,
			Content:  piece,
			Metadata: md,
		})
	}

	return chunks, nil
}

// Split splits content with the given limits and the default separators.
func Split(content string, maxChars, overlap int) []string {
	return New(WithChunkSize(maxChars), WithOverlap(overlap)).Split(content)
}

func (p *Processor) spans(runes []rune) []Span {
	n := len(runes)
	if n <= p.chunkSize {
		return []Span{{Start: 0, End: n}}
	}

	var out []Span
	start, shared := 0, 0

	for {
		if n-start <= p.chunkSize {
			out = append(out, Span{Start: start, End: n, Overlap: shared})
			return out
		}

		end := p.breakPoint(runes, start)
		out = append(out, Span{Start: start, End: end, Overlap: shared})

		next := p.nextStart(runes, start, end)
		shared = end - next
		start = next
	}
}

// breakPoint picks the end of the chunk starting at start. It prefers the
// last separator in the window, by priority, that still leaves room for the
// overlap, and otherwise cuts at the window edge.
func (p *Processor) breakPoint(runes []rune, start int) int {
	limit := start + p.chunkSize
	for _, sep := range p.separators {
		idx := lastIndex(runes, start, limit, sep)
		if idx < 0 {
			continue
		}
		end := idx + len(sep)
		if end-start > p.overlap {
			return end
		}
	}
	return limit
}

// nextStart steps back by up to overlap runes from end, snapping forward to
// the first word start so the shared text does not begin mid-word.
func (p *Processor) nextStart(runes []rune, start, end int) int {
	if p.overlap == 0 {
		return end
	}
	from := end - p.overlap
	if from <= start {
		return end
	}
	for j := from; j < end; j++ {
		if unicode.IsSpace(runes[j-1]) && !unicode.IsSpace(runes[j]) {
			return j
		}
	}
	return from
}

// lastIndex returns the last i in [lo, hi-len(sep)] where sep occurs, or -1.
func lastIndex(runes []rune, lo, hi int, sep []rune) int {
	if len(sep) == 0 {
		return -1
	}
	for i := hi - len(sep); i >= lo; i-- {
		if equalAt(runes, i, sep) {
			return i
		}
	}
	return -1
}

func equalAt(runes []rune, i int, sep []rune) bool {
	for k, r := range sep {
		if runes[i+k] != r {
			return false
		}
	}
	return true
}

func toRunes(seps []string) [][]rune {
	out := make([][]rune, 0, len(seps))
	for _, s := range seps {
		if s != "" {
			out = append(out, []rune(s))
		}
	}
	return out
}
