package services

import (
	"strings"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

const (
	notApplicable = "N/A"
	ellipsis      = "…"
	cellSeparator = " | "
)

// FieldTemplate renders a match's metadata as the body of one context line.
// notesTruncate bounds any free-text notes cell.
type FieldTemplate func(md domain.Metadata, notesTruncate int) string

// Render tags matches SRC1..SRCn in input order and serialises each one as
// "[SRCi] <template>". The context has exactly one line per match.
func Render(matches []domain.Match, tmpl FieldTemplate, notesTruncate int) (string, []domain.TaggedMatch) {
	if len(matches) == 0 {
		return "", nil
	}

	lines := make([]string, len(matches))
	tagged := make([]domain.TaggedMatch, len(matches))

	for i, m := range matches {
		tag := domain.Tag(i + 1)
		tagged[i] = domain.TaggedMatch{Tag: tag, Position: i + 1, Match: m}
		lines[i] = "[" + tag + "] " + oneLine(tmpl(m.Metadata, notesTruncate))
	}

	return strings.Join(lines, "\n"), tagged
}

// ProfileTemplate returns the field template of a domain: its labelled
// fields in order, missing values as "N/A", then the notes cell.
func ProfileTemplate(p domain.Profile) FieldTemplate {
	fields := p.ContextFields
	fallback := p.NotesFallback

	return func(md domain.Metadata, notesTruncate int) string {
		cells := make([]string, 0, len(fields)+1)
		for _, f := range fields {
			cells = append(cells, f.Label+": "+oneLine(md.GetOr(f.Key, notApplicable)))
		}

		notes := md.Get(domain.MetaNotes)
		if notes == "" && fallback != "" {
			notes = md.Get(fallback)
		}
		if notes == "" {
			cells = append(cells, "Notes: "+notApplicable)
		} else {
			cells = append(cells, "Notes: "+TruncateNotes(notes, notesTruncate))
		}

		return strings.Join(cells, cellSeparator)
	}
}

// TruncateNotes collapses whitespace runs (newlines included) to single
// spaces and cuts the result to n runes followed by an ellipsis.
// n <= 0 disables truncation.
func TruncateNotes(s string, n int) string {
	s = oneLine(s)
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimRight(string(runes[:n]), " ") + ellipsis
}

// DisplayRows builds the tabular view of tagged matches.
func DisplayRows(tagged []domain.TaggedMatch, p domain.Profile) []domain.DisplayRow {
	rows := make([]domain.DisplayRow, len(tagged))
	for i, t := range tagged {
		fields := make([]domain.DisplayField, len(p.DisplayFields))
		for j, f := range p.DisplayFields {
			fields[j] = domain.DisplayField{Label: f.Label, Value: oneLine(t.Metadata.Get(f.Key))}
		}
		rows[i] = domain.DisplayRow{
			Tag:    t.Tag,
			Score:  domain.RoundScore(t.Score),
			Fields: fields,
			Notes:  prefix(oneLine(t.Metadata.Get(domain.MetaNotes)), domain.DisplayNotesLength),
		}
	}
	return rows
}

// SourceLinks maps every tag to its record title and upstream URL.
func SourceLinks(tagged []domain.TaggedMatch, p domain.Profile, baseID string) []domain.SourceLink {
	links := make([]domain.SourceLink, len(tagged))
	for i, t := range tagged {
		links[i] = domain.SourceLink{
			Tag:   t.Tag,
			Title: t.Metadata.GetOr(p.TitleKey, notApplicable),
			URL:   domain.RecordURL(baseID, t.SourceID()),
		}
	}
	return links
}

func oneLine(s string) string {
	if !strings.ContainsAny(s, "\n\r\t") && !strings.Contains(s, "  ") {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
