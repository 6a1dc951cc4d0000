package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

func TestRender_Empty(t *testing.T) {
	text, tagged := Render(nil, ProfileTemplate(domain.ProspectProfile()), 100)

	assert.Equal(t, "", text)
	assert.Empty(t, tagged)
}

func TestRender_TagsInOrder(t *testing.T) {
	matches := []domain.Match{
		scoredMatch("recA", 0.91, domain.Metadata{"entreprise": "Acme", "statut": "Qualifié"}),
		scoredMatch("recB", 0.85, domain.Metadata{"entreprise": "Beta"}),
		scoredMatch("recC", 0.40, domain.Metadata{"entreprise": "Gamma"}),
	}

	text, tagged := Render(matches, ProfileTemplate(domain.ProspectProfile()), domain.NotesTruncateAnalysis)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	require.Len(t, tagged, 3)
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, "["+domain.Tag(i+1)+"] "), line)
		assert.Equal(t, domain.Tag(i+1), tagged[i].Tag)
		assert.Equal(t, i+1, tagged[i].Position)
		assert.Equal(t, matches[i].ID, tagged[i].ID)
	}
	assert.Equal(t,
		"[SRC1] Entreprise: Acme | Contact: N/A | Secteur: N/A | Statut: Qualifié | Budget: N/A | Notes: N/A",
		lines[0])
}

func TestRender_OneLinePerMatch(t *testing.T) {
	matches := []domain.Match{
		scoredMatch("recA", 0.9, domain.Metadata{
			"entreprise": "Acme\nGroup",
			"notes":      "ligne 1\nligne 2\r\n\nligne 3",
		}),
		scoredMatch("recB", 0.8, nil),
	}

	text, _ := Render(matches, ProfileTemplate(domain.ProspectProfile()), 1000)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Entreprise: Acme Group")
	assert.Contains(t, lines[0], "Notes: ligne 1 ligne 2 ligne 3")
}

func TestRender_NotesFallbackToText(t *testing.T) {
	matches := []domain.Match{
		scoredMatch("recA", 0.9, domain.Metadata{"text": "Entreprise: Acme\nNotes: rappel"}),
	}

	text, _ := Render(matches, ProfileTemplate(domain.ProspectProfile()), 1000)

	assert.True(t, strings.HasSuffix(text, "Notes: Entreprise: Acme Notes: rappel"), text)
}

func TestRender_CandidateLabels(t *testing.T) {
	matches := []domain.Match{
		scoredMatch("recX", 0.7, domain.Metadata{"nom": "Ada", "competences": "Go", "notes": "disponible"}),
	}

	text, _ := Render(matches, ProfileTemplate(domain.CandidateProfile()), domain.NotesTruncateCompact)

	assert.Equal(t,
		"[SRC1] Nom: Ada | Role: N/A | Compétences: Go | Exp: N/A | Localisation: N/A | Dispo: N/A | Notes: disponible",
		text)
}

func TestTruncateNotes(t *testing.T) {
	long := strings.Repeat("é", 1500)

	got := TruncateNotes(long, 1000)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, 1001, utf8.RuneCountInString(got))

	assert.Equal(t, "court", TruncateNotes("court", 1000))
	assert.Equal(t, "a b c", TruncateNotes("a\n\nb\tc", 1000))
	assert.Equal(t, "abc…", TruncateNotes("abc def", 4))
	assert.Equal(t, long, TruncateNotes(long, 0))
}

func TestDisplayRows(t *testing.T) {
	tagged := []domain.TaggedMatch{{
		Tag:      "SRC1",
		Position: 1,
		Match: scoredMatch("recA", 0.91234, domain.Metadata{
			"entreprise": "Acme",
			"notes":      strings.Repeat("n", 200),
		}),
	}}

	rows := DisplayRows(tagged, domain.ProspectProfile())

	require.Len(t, rows, 1)
	assert.Equal(t, "SRC1", rows[0].Tag)
	assert.Equal(t, 0.912, rows[0].Score)
	assert.Len(t, rows[0].Notes, domain.DisplayNotesLength)
	assert.Equal(t, []string{"Tag", "Score", "Entreprise", "Contact", "Secteur", "Statut", "Budget", "Notes"},
		rows[0].Headers())
	assert.Equal(t, "Acme", rows[0].Fields[0].Value)
}

func TestSourceLinks(t *testing.T) {
	tagged := []domain.TaggedMatch{
		{Tag: "SRC1", Position: 1, Match: scoredMatch("recA", 0.9, domain.Metadata{"entreprise": "Acme"})},
		{Tag: "SRC2", Position: 2, Match: scoredMatch("recB", 0.8, nil)},
	}

	links := SourceLinks(tagged, domain.ProspectProfile(), "appBase")

	require.Len(t, links, 2)
	assert.Equal(t, domain.SourceLink{Tag: "SRC1", Title: "Acme", URL: "https://airtable.com/appBase/recA"}, links[0])
	assert.Equal(t, "N/A", links[1].Title)
}
