package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Match is one similarity search hit. Higher scores are more similar.
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// SourceID returns the record identifier carried in metadata.
func (m Match) SourceID() string {
	if id := m.Metadata.Get(MetaSourceID); id != "" {
		return id
	}
	if id := m.Metadata.Get(MetaAirtableID); id != "" {
		return id
	}
	if id, _, ok := ParseChunkID(m.ID); ok {
		return id
	}
	return m.ID
}

// TaggedMatch is a Match with its per-query citation tag.
type TaggedMatch struct {
	// Tag is "SRC<position>".
	Tag string

	// Position is 1-based and equals the match's index in the result plus one.
	Position int

	Match
}

// TagPrefix prefixes every citation tag.
const TagPrefix = "SRC"

// Tag returns the citation tag for a 1-based position.
func Tag(position int) string {
	return TagPrefix + strconv.Itoa(position)
}

// Filter is an equality constraint on metadata fields.
type Filter map[string]string

// noFilterValues are UI sentinels meaning "do not filter on this field".
var noFilterValues = []string{"tous", "all"}

// IsNoFilterValue reports whether v means "no constraint".
func IsNoFilterValue(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return true
	}
	for _, s := range noFilterValues {
		if v == s {
			return true
		}
	}
	return false
}

// Effective returns the filter with sentinel and empty entries removed.
// The result is nil when nothing constrains the query.
func (f Filter) Effective() Filter {
	var out Filter
	for k, v := range f {
		if k == "" || IsNoFilterValue(v) {
			continue
		}
		if out == nil {
			out = make(Filter)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// DisplayField is one labelled cell of a display row.
type DisplayField struct {
	Label string
	Value string
}

// DisplayRow is the tabular view of a tagged match.
type DisplayRow struct {
	Tag    string
	Score  float64
	Fields []DisplayField
	Notes  string
}

// Headers returns the column names in order.
func (r DisplayRow) Headers() []string {
	h := make([]string, 0, len(r.Fields)+3)
	h = append(h, "Tag", "Score")
	for _, f := range r.Fields {
		h = append(h, f.Label)
	}
	return append(h, "Notes")
}

// Values returns the cells in header order.
func (r DisplayRow) Values() []string {
	v := make([]string, 0, len(r.Fields)+3)
	v = append(v, r.Tag, strconv.FormatFloat(r.Score, 'f', -1, 64))
	for _, f := range r.Fields {
		v = append(v, f.Value)
	}
	return append(v, r.Notes)
}

// MarshalJSON encodes the row as an object with columns in display order.
func (r DisplayRow) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	headers := r.Headers()
	values := r.Values()
	for i, h := range headers {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		if h == "Score" {
			b.WriteString(values[i])
			continue
		}
		val, err := json.Marshal(values[i])
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// RoundScore rounds a similarity score to three decimal places.
func RoundScore(s float64) float64 {
	return math.Round(s*1000) / 1000
}

// SourceLink points from a citation tag to the upstream record.
type SourceLink struct {
	Tag   string `json:"tag"`
	Title string `json:"title"`
	URL   string `json:"url"`
}
