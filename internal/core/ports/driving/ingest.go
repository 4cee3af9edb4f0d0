package driving

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// IngestService turns uploaded PDFs into indexed documents.
type IngestService interface {
	// Ingest extracts, chunks, embeds and stores a PDF payload.
	// Returns domain.ErrInvalidInput for non-PDF names or empty payloads and
	// domain.ErrEmptyResult when no text could be extracted.
	Ingest(ctx context.Context, filename string, content []byte) (*domain.IngestResult, error)
}
