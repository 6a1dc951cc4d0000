package mcp

import (
	"github.com/custodia-labs/ragbot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Search retrieves and renders matches.
	Search driving.SearchService

	// Ask answers grounded questions.
	Ask driving.AskService

	// Indexes lists vector indexes. Optional.
	Indexes driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
