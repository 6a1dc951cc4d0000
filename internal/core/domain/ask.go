package domain

import "time"

// DefaultTopK is the number of matches requested when none is given.
const DefaultTopK = 10

// SearchRequest describes one retrieval.
type SearchRequest struct {
	Query   string
	Kind    Kind
	TopK    int
	Filters Filter

	// NotesTruncate overrides the domain's notes length in context lines.
	NotesTruncate int
}

// SearchResult is the rendered outcome of a retrieval.
type SearchResult struct {
	RequestID string
	Kind      Kind

	// Context is the citation-tagged block given to the model.
	Context string

	Matches []TaggedMatch
	Rows    []DisplayRow
	Sources []SourceLink
}

// Empty reports whether the retrieval found nothing.
func (r *SearchResult) Empty() bool {
	return r == nil || len(r.Matches) == 0
}

// AskRequest describes one grounded question.
type AskRequest struct {
	SearchRequest

	// StrictCitations fails the request when the answer cites unknown tags.
	StrictCitations bool
}

// AskResult is the answer and everything needed to display it.
type AskResult struct {
	SearchResult

	Query  string
	Answer string

	// NoMatches is set when retrieval was empty and no model call was made.
	NoMatches bool

	// Citations are the valid tags cited in the answer, in first-seen order.
	Citations []string

	// InvalidCitations are cited tags with no matching source.
	InvalidCitations []string
}

// IngestReport summarises one ingest run.
type IngestReport struct {
	Kind           Kind
	Table          string
	Index          string
	RecordsRead    int
	RecordsSkipped int
	ChunksWritten  int
	Duration       time.Duration
}

// IndexInfo describes a vector index.
type IndexInfo struct {
	Name      string
	Dimension int
	Metric    string
	Host      string
	Ready     bool
}

// ExportFormat is a file format for display rows.
type ExportFormat string

// Supported export formats.
const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)
