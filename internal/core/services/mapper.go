package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// Normalize reduces a raw record to indexable content and canonical metadata.
// Content has one "Label: value" line per non-empty field, in schema order.
// ok is false when no mapped field has a value; such records are never indexed.
func Normalize(rec domain.Record, schema domain.Schema) (domain.NormalizedRecord, bool) {
	lines := make([]string, 0, len(schema))
	md := domain.Metadata{domain.MetaSourceID: rec.ID}

	for _, f := range schema {
		raw, present := rec.Fields[f.Source]
		if !present {
			continue
		}
		value := strings.TrimSpace(scalarString(raw))
		if value == "" {
			continue
		}
		lines = append(lines, f.Source+": "+value)
		md[f.Key] = value
	}

	if len(lines) == 0 {
		return domain.NormalizedRecord{}, false
	}

	return domain.NormalizedRecord{
		SourceID: rec.ID,
		Content:  strings.Join(lines, "\n"),
		Metadata: md,
	}, true
}

// scalarString renders a field value as text. Lists are joined with ", ".
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []string:
		return strings.Join(nonEmpty(t), ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, scalarString(item))
		}
		return strings.Join(nonEmpty(parts), ", ")
	case map[string]any:
		// Linked or rich fields expose a display name.
		for _, key := range []string{"name", "text", "label"} {
			if s, ok := t[key].(string); ok {
				return s
			}
		}
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
