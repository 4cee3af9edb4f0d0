package driving

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns all documents ordered by upload time.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Delete removes a document, its chunks and its vectors.
	// Returns domain.ErrNotFound for unknown IDs.
	Delete(ctx context.Context, documentID string) error

	// Health reports readiness and the number of loaded documents.
	Health(ctx context.Context) domain.Health
}
