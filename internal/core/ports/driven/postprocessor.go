package driven

import "github.com/custodia-labs/insight/internal/core/domain"

// Chunker splits extracted pages into retrieval chunks.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// ChunkPages chunks the pages of one document in order. Chunk indexes
	// are continuous across pages and start at zero.
	ChunkPages(documentID, documentName string, pages []domain.Page) []domain.Chunk
}
