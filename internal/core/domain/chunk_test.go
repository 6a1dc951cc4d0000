package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "recABC_0", ChunkID("recABC", 0))
	assert.Equal(t, "recABC_12", ChunkID("recABC", 12))
}

func TestParseChunkID(t *testing.T) {
	tests := []struct {
		id     string
		source string
		index  int
		ok     bool
	}{
		{"recABC_0", "recABC", 0, true},
		{"rec_with_underscores_3", "rec_with_underscores", 3, true},
		{"recABC", "", 0, false},
		{"recABC_", "", 0, false},
		{"_1", "", 0, false},
		{"recABC_x", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			source, index, ok := ParseChunkID(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.source, source)
			assert.Equal(t, tt.index, index)
		})
	}
}

func TestChunkID_RoundTrip(t *testing.T) {
	source, index, ok := ParseChunkID(ChunkID("rec9", 4))
	assert.True(t, ok)
	assert.Equal(t, "rec9", source)
	assert.Equal(t, 4, index)
}
