package services

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// Retriever embeds a question and searches the store with a fixed width.
type Retriever struct {
	embedder driven.EmbeddingService
	store    *Store
	topK     int
}

// NewRetriever creates a retriever returning at most topK candidates.
// A non-positive topK uses domain.DefaultTopK.
func NewRetriever(embedder driven.EmbeddingService, store *Store, topK int) *Retriever {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}
}

// TopK returns the retrieval width.
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve returns the candidates most similar to question, best first.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]domain.Candidate, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, providerError("embed question", err)
	}

	candidates, err := r.store.Search(ctx, vector, r.topK)
	if err != nil {
		return nil, err
	}

	logger.Debug("Retrieved %d candidates (k=%d)", len(candidates), r.topK)
	return candidates, nil
}
