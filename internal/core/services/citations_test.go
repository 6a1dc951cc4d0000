package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCitations(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		n           int
		wantValid   []string
		wantInvalid []string
	}{
		{
			name:      "all valid in first-seen order",
			answer:    "Acme [SRC2] puis Beta [SRC1], encore [SRC2].",
			n:         3,
			wantValid: []string{"SRC2", "SRC1"},
		},
		{
			name:        "out of range",
			answer:      "Voir [SRC4] et [SRC0].",
			n:           3,
			wantInvalid: []string{"SRC4", "SRC0"},
		},
		{
			name:      "leading zeros normalise",
			answer:    "[SRC01] [SRC1]",
			n:         1,
			wantValid: []string{"SRC1"},
		},
		{
			name:   "no citations",
			answer: "Aucune source pertinente.",
			n:      3,
		},
		{
			name:   "embedded in a word is not a citation",
			answer: "XSRC1 SRC1X",
			n:      3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, invalid := ValidateCitations(tt.answer, tt.n)
			assert.Equal(t, tt.wantValid, valid)
			assert.Equal(t, tt.wantInvalid, invalid)
		})
	}
}
