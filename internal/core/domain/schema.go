package domain

// Field maps one source column to its canonical metadata key.
// Source is also the label used in indexed content ("Label: value").
type Field struct {
	Source string
	Key    string
}

// Schema is the ordered field layout used to normalise records.
type Schema []Field

// Keys returns the canonical keys in schema order.
func (s Schema) Keys() []string {
	keys := make([]string, len(s))
	for i, f := range s {
		keys[i] = f.Key
	}
	return keys
}

// ContextField is one labelled cell of a rendered context line or display row.
type ContextField struct {
	Label string
	Key   string
}

// Profile bundles everything that differs between domains.
type Profile struct {
	Kind Kind

	// Schema drives normalisation at ingest time.
	Schema Schema

	// ContextFields are rendered, in order, before the notes cell.
	ContextFields []ContextField

	// DisplayFields are the table columns between Score and Notes.
	DisplayFields []ContextField

	// NotesFallback is read when the notes field is absent.
	NotesFallback string

	// KeepText stores the chunk text in metadata.
	KeepText bool

	// TitleKey names the record in source listings.
	TitleKey string

	// ContextLabel heads the context block in the prompt.
	ContextLabel string

	// Persona is the prompt name of the system instruction.
	Persona string

	// NotesTruncate bounds the notes cell in context lines.
	NotesTruncate int
}

// Default notes truncation lengths.
const (
	NotesTruncateAnalysis = 1000
	NotesTruncateCompact  = 80
	DisplayNotesLength    = 120
)

// Persona prompt names.
const (
	PersonaSalesBot   = "salesbot"
	PersonaRecruitBot = "recruitbot"
)

// ProspectProfile describes the sales prospect domain.
func ProspectProfile() Profile {
	return Profile{
		Kind: KindProspects,
		Schema: Schema{
			{Source: "Entreprise", Key: "entreprise"},
			{Source: "Contact", Key: "contact"},
			{Source: "Email", Key: "email"},
			{Source: "Phone", Key: "phone"},
			{Source: "Secteur", Key: "secteur"},
			{Source: "Statut", Key: "statut"},
			{Source: "Budget", Key: "budget"},
			{Source: "Notes", Key: "notes"},
		},
		ContextFields: []ContextField{
			{Label: "Entreprise", Key: "entreprise"},
			{Label: "Contact", Key: "contact"},
			{Label: "Secteur", Key: "secteur"},
			{Label: "Statut", Key: "statut"},
			{Label: "Budget", Key: "budget"},
		},
		DisplayFields: []ContextField{
			{Label: "Entreprise", Key: "entreprise"},
			{Label: "Contact", Key: "contact"},
			{Label: "Secteur", Key: "secteur"},
			{Label: "Statut", Key: "statut"},
			{Label: "Budget", Key: "budget"},
		},
		NotesFallback: MetaText,
		KeepText:      true,
		TitleKey:      "entreprise",
		ContextLabel:  "PROSPECTS",
		Persona:       PersonaSalesBot,
		NotesTruncate: NotesTruncateAnalysis,
	}
}

// CandidateProfile describes the recruitment candidate domain.
func CandidateProfile() Profile {
	return Profile{
		Kind: KindCandidates,
		Schema: Schema{
			{Source: "Nom", Key: "nom"},
			{Source: "Role", Key: "role"},
			{Source: "Competences", Key: "competences"},
			{Source: "Experience", Key: "experience"},
			{Source: "Localisation", Key: "localisation"},
			{Source: "Disponibilite", Key: "disponibilite"},
			{Source: "Notes", Key: "notes"},
		},
		ContextFields: []ContextField{
			{Label: "Nom", Key: "nom"},
			{Label: "Role", Key: "role"},
			{Label: "Compétences", Key: "competences"},
			{Label: "Exp", Key: "experience"},
			{Label: "Localisation", Key: "localisation"},
			{Label: "Dispo", Key: "disponibilite"},
		},
		DisplayFields: []ContextField{
			{Label: "Nom", Key: "nom"},
			{Label: "Role", Key: "role"},
			{Label: "Competences", Key: "competences"},
			{Label: "Experience", Key: "experience"},
			{Label: "Localisation", Key: "localisation"},
			{Label: "Disponibilite", Key: "disponibilite"},
		},
		TitleKey:      "nom",
		ContextLabel:  "CANDIDATS",
		Persona:       PersonaRecruitBot,
		NotesTruncate: NotesTruncateCompact,
	}
}

// ProfileFor returns the profile of a kind.
func ProfileFor(k Kind) (Profile, error) {
	switch k {
	case KindProspects:
		return ProspectProfile(), nil
	case KindCandidates:
		return CandidateProfile(), nil
	default:
		return Profile{}, ErrUnsupportedType
	}
}
