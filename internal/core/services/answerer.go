package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// defaultContextLabel heads the context block when a domain sets none.
const defaultContextLabel = "SOURCES"

// GroundedPrompt is the two-part input of one grounded answer.
type GroundedPrompt struct {
	// Persona is the system instruction.
	Persona string

	// Label heads the context block, e.g. "PROSPECTS".
	Label string

	// Context is the rendered, citation-tagged block.
	Context string

	Question string
}

// Human returns the human turn: the context followed by the question.
func (p GroundedPrompt) Human() string {
	label := p.Label
	if label == "" {
		label = defaultContextLabel
	}
	return label + ":\n" + p.Context + "\n\nQUESTION: " + strings.TrimSpace(p.Question) + "\n\nANALYSE:"
}

// Answerer asks the generative model once per question.
type Answerer struct {
	llm  driven.LLMService
	opts driven.CompleteOptions
}

// NewAnswerer creates an answerer.
func NewAnswerer(llm driven.LLMService, opts driven.CompleteOptions) *Answerer {
	return &Answerer{llm: llm, opts: opts}
}

// Answer returns the model's raw text. It refuses an empty context and
// never retries; model failures come back as *domain.GenerationError.
func (a *Answerer) Answer(ctx context.Context, p GroundedPrompt) (string, error) {
	if strings.TrimSpace(p.Context) == "" {
		return "", domain.ErrEmptyContext
	}

	logger.Debug("Calling %s with %d context bytes", a.llm.ModelName(), len(p.Context))

	text, err := a.llm.Complete(ctx, p.Persona, p.Human(), a.opts)
	if err != nil {
		return "", &domain.GenerationError{Model: a.llm.ModelName(), Err: err}
	}
	return text, nil
}
