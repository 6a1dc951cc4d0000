package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies a business domain indexed by ragbot.
type Kind string

// Available domains.
const (
	// KindProspects is the sales prospect table.
	KindProspects Kind = "prospects"

	// KindCandidates is the recruitment candidate table.
	KindCandidates Kind = "candidates"
)

// IsValid returns true if the kind is recognised.
func (k Kind) IsValid() bool {
	switch k {
	case KindProspects, KindCandidates:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: domain %q (want prospects or candidates)", ErrUnsupportedType, s)
	}
	return k, nil
}

// Record is one row of the tabular data source.
type Record struct {
	// ID is the stable opaque identifier assigned by the source.
	ID string

	// Fields maps source field names to scalar values.
	Fields map[string]any

	// CreatedAt is when the row was created upstream, if known.
	CreatedAt time.Time
}

// Metadata is the flat string mapping stored next to every vector.
type Metadata map[string]string

// Get returns the value for key, or "" if absent.
func (m Metadata) Get(key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}

// GetOr returns the value for key, or def if absent or empty.
func (m Metadata) GetOr(key, def string) string {
	if v := m.Get(key); v != "" {
		return v
	}
	return def
}

// Clone returns a shallow copy safe to mutate.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Well-known metadata keys.
const (
	MetaSourceID   = "source_id"
	MetaChunkIndex = "chunk_index"
	MetaText       = "text"
	MetaNotes      = "notes"

	// MetaAirtableID is the legacy key for the record identifier.
	MetaAirtableID = "airtable_id"
)

// NormalizedRecord is a record reduced to indexable text plus canonical metadata.
type NormalizedRecord struct {
	SourceID string
	Content  string
	Metadata Metadata
}

// RecordURL returns the browser link for a source record.
func RecordURL(baseID, recordID string) string {
	if baseID == "" {
		return "https://airtable.com/" + recordID
	}
	return "https://airtable.com/" + baseID + "/" + recordID
}
