package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// IndexPersistence durably stores the aligned vector and chunk sequences
// together with document metadata. Every method writes all three
// collections in one atomic unit or not at all.
type IndexPersistence interface {
	// Append stores a document whose chunks and vectors occupy positions
	// base through base+len(chunks)-1.
	Append(ctx context.Context, base int, doc domain.Document, chunks []domain.Chunk, vectors [][]float32) error

	// Replace overwrites everything with snap.
	Replace(ctx context.Context, snap *domain.IndexSnapshot) error

	// Load reads everything back in position order.
	Load(ctx context.Context) (*domain.IndexSnapshot, error)
}

// UploadStore keeps the original uploaded files.
type UploadStore interface {
	// Save writes the payload for a document and returns its location.
	Save(documentID string, content []byte) (string, error)

	// Remove deletes the payload. Missing files are not an error.
	Remove(documentID string) error

	// Path returns the location of a stored payload.
	// Returns domain.ErrNotFound if nothing is stored for the document.
	Path(documentID string) (string, error)
}
