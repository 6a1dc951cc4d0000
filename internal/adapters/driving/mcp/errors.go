// Package mcp provides an MCP (Model Context Protocol) server adapter for ragbot.
// It lets AI assistants search the prospect and candidate indexes and ask
// grounded questions about them.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
