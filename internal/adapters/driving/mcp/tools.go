package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// SearchInput is the input schema for the search and ask tools.
type SearchInput struct {
	Query   string            `json:"query" jsonschema:"the question or search text"`
	Domain  string            `json:"domain,omitempty" jsonschema:"prospects (default) or candidates"`
	Limit   int               `json:"limit,omitempty" jsonschema:"maximum number of sources to retrieve (default 10)"`
	Filters map[string]string `json:"filters,omitempty" jsonschema:"metadata equality filters, e.g. {\"secteur\": \"Fintech\"}; Tous or All means no filter"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	RequestID string      `json:"request_id"`
	Domain    string      `json:"domain"`
	Results   []RowOutput `json:"results"`
	Count     int         `json:"count"`
}

// RowOutput is one tagged source.
type RowOutput struct {
	Tag    string            `json:"tag"`
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields"`
	Notes  string            `json:"notes,omitempty"`
	URL    string            `json:"url,omitempty"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	RequestID        string      `json:"request_id"`
	Answer           string      `json:"answer"`
	Sources          []RowOutput `json:"sources"`
	NoMatches        bool        `json:"no_matches"`
	InvalidCitations []string    `json:"invalid_citations,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find prospects or candidates similar to a query, with [SRCn] citation tags",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the retrieved prospects or candidates, citing them as [SRCn]",
	}, s.handleAsk)
}

func toRequest(input SearchInput) (domain.SearchRequest, error) {
	kind := domain.KindProspects
	if input.Domain != "" {
		k, err := domain.ParseKind(input.Domain)
		if err != nil {
			return domain.SearchRequest{}, err
		}
		kind = k
	}

	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	return domain.SearchRequest{
		Query:   input.Query,
		Kind:    kind,
		TopK:    limit,
		Filters: domain.Filter(input.Filters),
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req, err := toRequest(input)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	res, err := s.ports.Search.Search(ctx, req)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	rows := toRows(res)
	return nil, SearchOutput{
		RequestID: res.RequestID,
		Domain:    string(res.Kind),
		Results:   rows,
		Count:     len(rows),
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, AskOutput, error) {
	req, err := toRequest(input)
	if err != nil {
		return nil, AskOutput{}, err
	}

	res, err := s.ports.Ask.Ask(ctx, domain.AskRequest{SearchRequest: req})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		RequestID:        res.RequestID,
		Answer:           res.Answer,
		Sources:          toRows(&res.SearchResult),
		NoMatches:        res.NoMatches,
		InvalidCitations: res.InvalidCitations,
	}, nil
}

func toRows(res *domain.SearchResult) []RowOutput {
	urls := make(map[string]string, len(res.Sources))
	for _, src := range res.Sources {
		urls[src.Tag] = src.URL
	}

	rows := make([]RowOutput, 0, len(res.Rows))
	for _, r := range res.Rows {
		fields := make(map[string]string, len(r.Fields))
		for _, f := range r.Fields {
			fields[f.Label] = f.Value
		}
		rows = append(rows, RowOutput{
			Tag:    r.Tag,
			Score:  r.Score,
			Fields: fields,
			Notes:  r.Notes,
			URL:    urls[r.Tag],
		})
	}
	return rows
}
