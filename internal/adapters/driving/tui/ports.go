// Package tui provides an interactive terminal user interface for insight.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// Document lists and deletes ingested documents.
	Document driving.DocumentService

	// Actions copies answers and opens documents.
	Actions driving.AnswerActionService

	// Settings exposes the active configuration.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(query driving.QueryService, document driving.DocumentService) *Ports {
	return &Ports{
		Query:    query,
		Document: document,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
