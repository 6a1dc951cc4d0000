package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/core/ports/driving"
	"github.com/custodia-labs/ragbot/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskService answers questions grounded in retrieved records.
type AskService struct {
	search   driving.SearchService
	answerer *Answerer
	prompts  driven.PromptStore
}

// NewAskService creates an ask service.
func NewAskService(
	search driving.SearchService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	opts driven.CompleteOptions,
) *AskService {
	return &AskService{
		search:   search,
		answerer: NewAnswerer(llm, opts),
		prompts:  prompts,
	}
}

// Ask retrieves, renders and answers. With no matches the model is not called.
func (s *AskService) Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResult, error) {
	res, err := s.search.Search(ctx, req.SearchRequest)
	if err != nil {
		return nil, err
	}

	out := &domain.AskResult{
		SearchResult: *res,
		Query:        strings.TrimSpace(req.Query),
	}

	if res.Empty() {
		logger.Info("No matches for %q, skipping generation", out.Query)
		out.NoMatches = true
		return out, nil
	}

	profile, err := domain.ProfileFor(res.Kind)
	if err != nil {
		return nil, err
	}

	persona, err := s.prompts.Load(profile.Persona)
	if err != nil {
		return nil, fmt.Errorf("load persona %s: %w", profile.Persona, err)
	}

	logger.Section("Generate")
	answer, err := s.answerer.Answer(ctx, GroundedPrompt{
		Persona:  persona,
		Label:    profile.ContextLabel,
		Context:  res.Context,
		Question: out.Query,
	})
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return nil, err
	}
	out.Answer = answer

	out.Citations, out.InvalidCitations = ValidateCitations(answer, len(res.Matches))
	if len(out.InvalidCitations) > 0 {
		logger.WithFields(logger.Fields{
			"request": res.RequestID,
			"invalid": strings.Join(out.InvalidCitations, ","),
		}).Warn("answer cites sources that were not provided")
		if req.StrictCitations {
			return nil, fmt.Errorf("%w: %s", domain.ErrUngroundedCitation, strings.Join(out.InvalidCitations, ", "))
		}
	}

	return out, nil
}
