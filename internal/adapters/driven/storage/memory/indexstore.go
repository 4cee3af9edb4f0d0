package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexPersistence = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexPersistence.
// It keeps the same position contract as the SQLite store and is used for
// ephemeral runs and tests.
type IndexStore struct {
	mu   sync.RWMutex
	snap domain.IndexSnapshot
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{}
}

// Append stores a document at positions base through base+len(chunks)-1.
func (s *IndexStore) Append(
	_ context.Context, base int, doc domain.Document, chunks []domain.Chunk, vectors [][]float32,
) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrConsistency, len(vectors), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if base != len(s.snap.Chunks) {
		return fmt.Errorf("%w: append at position %d, store holds %d", domain.ErrConsistency, base, len(s.snap.Chunks))
	}

	s.snap.Vectors = append(s.snap.Vectors, cloneVectors(vectors)...)
	s.snap.Chunks = append(s.snap.Chunks, chunks...)
	s.snap.Documents = append(s.snap.Documents, doc)
	return nil
}

// Replace overwrites everything with snap.
func (s *IndexStore) Replace(_ context.Context, snap *domain.IndexSnapshot) error {
	if snap.Len() != len(snap.Vectors) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrConsistency, len(snap.Vectors), snap.Len())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = domain.IndexSnapshot{
		Vectors:   cloneVectors(snap.Vectors),
		Chunks:    slices.Clone(snap.Chunks),
		Documents: slices.Clone(snap.Documents),
	}
	return nil
}

// Load returns a copy of the stored snapshot.
func (s *IndexStore) Load(_ context.Context) (*domain.IndexSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &domain.IndexSnapshot{
		Vectors:   cloneVectors(s.snap.Vectors),
		Chunks:    slices.Clone(s.snap.Chunks),
		Documents: slices.Clone(s.snap.Documents),
	}, nil
}

func cloneVectors(vectors [][]float32) [][]float32 {
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		out[i] = slices.Clone(v)
	}
	return out
}
