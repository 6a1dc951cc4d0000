package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ragbot resources.
	uriScheme = "ragbot://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "indexes",
		Name:        "indexes",
		Description: "Vector indexes visible to the configured credential",
		MIMEType:    "application/json",
	}, s.handleIndexesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "domains/{domain}",
		Name:        "domain",
		Description: "Fields, filters and index of a domain (prospects or candidates)",
		MIMEType:    "application/json",
	}, s.handleDomainResource)
}

// handleIndexesResource lists indexes, or an empty array when no index
// service is wired.
func (s *Server) handleIndexesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type indexInfo struct {
		Name      string `json:"name"`
		Dimension int    `json:"dimension"`
		Metric    string `json:"metric"`
		Ready     bool   `json:"ready"`
	}

	infos := []indexInfo{}
	if s.ports.Indexes != nil {
		list, err := s.ports.Indexes.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing indexes: %w", err)
		}
		for _, i := range list {
			infos = append(infos, indexInfo{Name: i.Name, Dimension: i.Dimension, Metric: i.Metric, Ready: i.Ready})
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleDomainResource describes one domain profile.
func (s *Server) handleDomainResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name, err := parseDomainURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	kind, err := domain.ParseKind(name)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	profile, err := domain.ProfileFor(kind)
	if err != nil {
		return nil, err
	}

	type field struct {
		Key   string `json:"key"`
		Label string `json:"label"`
	}
	out := struct {
		Domain  string  `json:"domain"`
		Persona string  `json:"persona"`
		Label   string  `json:"context_label"`
		Fields  []field `json:"fields"`
	}{
		Domain:  string(kind),
		Persona: profile.Persona,
		Label:   profile.ContextLabel,
	}
	for _, f := range profile.Schema {
		out.Fields = append(out.Fields, field{Key: f.Key, Label: f.Source})
	}

	return jsonResource(req.Params.URI, out)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// parseDomainURI extracts the domain from ragbot://domains/{domain}.
func parseDomainURI(uri string) (string, error) {
	const prefix = uriScheme + "domains/"
	name, ok := strings.CutPrefix(uri, prefix)
	if !ok || name == "" {
		return "", fmt.Errorf("invalid domain URI: %s", uri)
	}
	return name, nil
}
