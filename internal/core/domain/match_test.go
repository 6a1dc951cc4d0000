package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag(t *testing.T) {
	assert.Equal(t, "SRC1", Tag(1))
	assert.Equal(t, "SRC12", Tag(12))
}

func TestFilter_Effective(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   Filter
	}{
		{"nil", nil, nil},
		{"empty value", Filter{"secteur": ""}, nil},
		{"whitespace value", Filter{"secteur": "  "}, nil},
		{"tous sentinel", Filter{"secteur": "Tous"}, nil},
		{"all sentinel", Filter{"statut": "ALL"}, nil},
		{"kept", Filter{"secteur": "Fintech"}, Filter{"secteur": "Fintech"}},
		{"mixed", Filter{"secteur": "Fintech", "statut": "Tous"}, Filter{"secteur": "Fintech"}},
		{"trimmed", Filter{"statut": " Chaud "}, Filter{"statut": "Chaud"}},
		{"empty key", Filter{"": "x"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Effective())
		})
	}
}

func TestMatch_SourceID(t *testing.T) {
	assert.Equal(t, "rec1", Match{Metadata: Metadata{MetaSourceID: "rec1"}}.SourceID())
	assert.Equal(t, "rec2", Match{Metadata: Metadata{MetaAirtableID: "rec2"}}.SourceID())
	assert.Equal(t, "rec3", Match{ID: "rec3_0"}.SourceID())
	assert.Equal(t, "opaque", Match{ID: "opaque"}.SourceID())
}

func TestDisplayRow_HeadersAndValues(t *testing.T) {
	row := DisplayRow{
		Tag:    "SRC1",
		Score:  0.912,
		Fields: []DisplayField{{Label: "Entreprise", Value: "Acme"}},
		Notes:  "hello",
	}

	assert.Equal(t, []string{"Tag", "Score", "Entreprise", "Notes"}, row.Headers())
	assert.Equal(t, []string{"SRC1", "0.912", "Acme", "hello"}, row.Values())
}

func TestDisplayRow_MarshalJSON_KeepsColumnOrder(t *testing.T) {
	row := DisplayRow{
		Tag:    "SRC2",
		Score:  0.85,
		Fields: []DisplayField{{Label: "Nom", Value: "Zoé"}, {Label: "Role", Value: "Dev"}},
		Notes:  "dispo",
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"Tag":"SRC2","Score":0.85,"Nom":"Zoé","Role":"Dev","Notes":"dispo"}`, string(data))
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 0.913, RoundScore(0.91349))
	assert.Equal(t, 0.4, RoundScore(0.4))
}

func TestRecordURL(t *testing.T) {
	assert.Equal(t, "https://airtable.com/app1/rec1", RecordURL("app1", "rec1"))
	assert.Equal(t, "https://airtable.com/rec1", RecordURL("", "rec1"))
}
