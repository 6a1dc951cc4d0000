package domain

import (
	"strconv"
	"strings"
)

// IndexedChunk is a unit of record text with its embedding and metadata.
// ID is deterministic so re-ingesting an unchanged record overwrites it.
type IndexedChunk struct {
	ID       string
	SourceID string
	Index    int
	Content  string
	Vector   []float32
	Metadata Metadata
}

// ChunkID derives the chunk identifier from its record and position.
func ChunkID(sourceID string, index int) string {
	return sourceID + "_" + strconv.Itoa(index)
}

// ParseChunkID splits an identifier produced by ChunkID.
// The record id may itself contain underscores; the index is the last segment.
func ParseChunkID(id string) (sourceID string, index int, ok bool) {
	i := strings.LastIndexByte(id, '_')
	if i <= 0 || i == len(id)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return id[:i], n, true
}
