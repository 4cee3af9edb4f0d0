package driving

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// IndexService maintains the persisted vector index.
type IndexService interface {
	// Rebuild rewrites the persisted index from the loaded one and reads it
	// back. Returns domain.ErrConsistency if the two disagree.
	Rebuild(ctx context.Context) (*domain.IndexStats, error)

	// Stats reports the size of the loaded index.
	Stats(ctx context.Context) domain.IndexStats
}
