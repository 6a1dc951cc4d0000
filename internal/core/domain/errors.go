package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or domain kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIngestInProgress indicates another ingest run holds the lock.
	ErrIngestInProgress = errors.New("ingest in progress")

	// Pipeline Errors.

	// ErrConfiguration indicates a missing or invalid required setting.
	ErrConfiguration = errors.New("configuration error")

	// ErrEmbedding indicates the embedding service failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrRetrieval indicates the vector index query failed.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the generative model call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrDimensionMismatch indicates the embedder and the index disagree on vector size.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyContext indicates the answerer was called without any rendered sources.
	// Callers must short-circuit on zero matches instead.
	ErrEmptyContext = errors.New("empty context")

	// ErrUngroundedCitation indicates the answer cites a tag absent from the context.
	ErrUngroundedCitation = errors.New("answer cites unknown sources")

	// ErrIndexNotReady indicates the vector index did not become ready in time.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ConfigurationError reports every required setting that is missing or invalid.
// It is fatal and raised at start-up only.
type ConfigurationError struct {
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConfiguration.Error())
	if len(e.Missing) > 0 {
		b.WriteString(": missing ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Unwrap allows errors.Is(err, ErrConfiguration).
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// EmbeddingError wraps a failed embedding call.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("%s: %v", ErrEmbedding, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrEmbedding, e.Model, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *EmbeddingError) Unwrap() []error { return []error{ErrEmbedding, e.Err} }

// RetrievalError wraps a failed vector index call.
type RetrievalError struct {
	Index string
	Err   error
}

func (e *RetrievalError) Error() string {
	if e.Index == "" {
		return fmt.Sprintf("%s: %v", ErrRetrieval, e.Err)
	}
	return fmt.Sprintf("%s (index %s): %v", ErrRetrieval, e.Index, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *RetrievalError) Unwrap() []error { return []error{ErrRetrieval, e.Err} }

// GenerationError wraps a failed generative model call.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("%s: %v", ErrGeneration, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrGeneration, e.Model, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *GenerationError) Unwrap() []error { return []error{ErrGeneration, e.Err} }

// DimensionMismatchError reports a vector whose length disagrees with the
// configured index dimensionality. It always indicates configuration drift.
type DimensionMismatchError struct {
	Expected int
	Actual   int
	Where    string
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: %s expects %d dimensions, got %d", ErrDimensionMismatch, e.Where, e.Expected, e.Actual)
}

// Unwrap allows errors.Is(err, ErrDimensionMismatch).
func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }
