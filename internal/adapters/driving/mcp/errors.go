// Package mcp provides an MCP (Model Context Protocol) server adapter for Insight.
// It lets AI assistants ask questions against the ingested PDFs and manage them.
package mcp

import "errors"

var (
	// ErrMissingQueryService is returned when the query service is not provided.
	ErrMissingQueryService = errors.New("mcp: query service is required")

	// ErrMissingDocumentService is returned when the document service is not provided.
	ErrMissingDocumentService = errors.New("mcp: document service is required")
)
