package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
	"github.com/custodia-labs/insight/internal/vectorindex/flat"
)

// snapshot is one published state of the store. It is never modified after
// publication; writers build a successor and swap it in.
type snapshot struct {
	index     *flat.Index
	chunks    []domain.Chunk
	documents map[string]domain.Document
}

func (s *snapshot) aligned() error {
	if s.index.Len() != len(s.chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrConsistency, s.index.Len(), len(s.chunks))
	}
	return nil
}

// Store holds the vector index, the chunk at each index position and the
// document aggregates. Position i of the index always belongs to chunk i.
//
// Searches read the current snapshot without locking. AddDocument and
// RemoveDocument are serialised and publish their result in one atomic swap,
// so a search never sees a partially applied change.
type Store struct {
	embedder    driven.EmbeddingService
	persistence driven.IndexPersistence
	dim         int
	now         func() time.Time

	mu      sync.Mutex // serialises writers
	current atomic.Pointer[snapshot]
}

// NewStore creates an empty store for the embedder's vector dimension.
// persistence may be nil for a purely in-memory store.
func NewStore(embedder driven.EmbeddingService, persistence driven.IndexPersistence) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("store: embedder is required")
	}

	index, err := flat.New(embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	s := &Store{
		embedder:    embedder,
		persistence: persistence,
		dim:         embedder.Dimensions(),
		now:         time.Now,
	}
	s.current.Store(&snapshot{index: index, documents: map[string]domain.Document{}})

	return s, nil
}

// Load replaces the in-memory state with the persisted one after checking
// that vectors, chunks and documents agree.
func (s *Store) Load(ctx context.Context) error {
	if s.persistence == nil {
		return nil
	}

	snap, err := s.persistence.Load(ctx)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	next, err := s.fromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(next)

	logger.Info("Loaded %d documents with %d chunks", len(next.documents), len(next.chunks))
	return nil
}

// Persist writes the current state in full.
func (s *Store) Persist(ctx context.Context) error {
	if s.persistence == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if err := cur.aligned(); err != nil {
		return err
	}
	if err := s.persistence.Replace(ctx, toIndexSnapshot(cur)); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}

// AddDocument embeds the chunks of a new document and appends them to the
// index. Either the whole document is added and persisted or nothing changes.
func (s *Store) AddDocument(
	ctx context.Context, documentID, filename string, chunks []domain.Chunk, fileSize int64,
) (*domain.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document ID is required", domain.ErrInvalidInput)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %s has no chunks", domain.ErrEmptyResult, documentID)
	}
	for i := range chunks {
		if chunks[i].DocumentID != documentID {
			return nil, fmt.Errorf("%w: chunk %d belongs to document %q", domain.ErrInvalidInput, i, chunks[i].DocumentID)
		}
	}
	if s.HasDocument(documentID) {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrAlreadyExists)
	}

	logger.Section("Add Document")
	logger.Debug("Embedding %d chunks for %s", len(chunks), documentID)

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	// Embedding happens outside the writer lock; it touches no store state.
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, providerError("embed chunks", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d chunks", domain.ErrConsistency, len(vectors), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if _, exists := cur.documents[documentID]; exists {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrAlreadyExists)
	}

	index, err := cur.index.Append(vectors...)
	if err != nil {
		return nil, providerError("append vectors", err)
	}

	doc := domain.Document{
		ID:         documentID,
		Filename:   filename,
		UploadTime: s.now().UTC(),
		PageCount:  domain.PageCountOf(chunks),
		ChunkCount: len(chunks),
		FileSize:   fileSize,
	}

	documents := maps.Clone(cur.documents)
	documents[documentID] = doc

	next := &snapshot{
		index:     index,
		chunks:    append(cur.chunks, chunks...),
		documents: documents,
	}
	if err := next.aligned(); err != nil {
		return nil, err
	}

	if s.persistence != nil {
		if err := s.persistence.Append(ctx, cur.index.Len(), doc, chunks, vectors); err != nil {
			return nil, fmt.Errorf("persist document %s: %w", documentID, err)
		}
	}

	s.current.Store(next)
	logger.Info("Added document %s (%s): %d pages, %d chunks", documentID, filename, doc.PageCount, doc.ChunkCount)

	return &doc, nil
}

// RemoveDocument deletes a document and all of its chunks.
//
// The flat index has no point deletion, so the index is rebuilt from the
// surviving vectors in their original order. Survivors keep their stored
// vectors; nothing is re-embedded.
func (s *Store) RemoveDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if _, ok := cur.documents[documentID]; !ok {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	logger.Section("Remove Document")

	chunks := make([]domain.Chunk, 0, len(cur.chunks))
	vectors := make([][]float32, 0, len(cur.chunks))
	for i := range cur.chunks {
		if cur.chunks[i].DocumentID == documentID {
			continue
		}
		chunks = append(chunks, cur.chunks[i])
		vectors = append(vectors, cur.index.Vector(i))
	}

	index, err := flat.FromVectors(s.dim, vectors)
	if err != nil {
		return fmt.Errorf("%w: rebuild index: %w", domain.ErrConsistency, err)
	}

	documents := maps.Clone(cur.documents)
	delete(documents, documentID)

	next := &snapshot{index: index, chunks: chunks, documents: documents}
	if err := next.aligned(); err != nil {
		return err
	}

	if s.persistence != nil {
		if err := s.persistence.Replace(ctx, toIndexSnapshot(next)); err != nil {
			return fmt.Errorf("persist rebuild: %w", err)
		}
	}

	s.current.Store(next)
	logger.Info("Removed document %s; rebuilt index with %d chunks", documentID, len(chunks))

	return nil
}

// Search returns the k chunks most similar to query, best first. Ties are
// broken by insertion order. An empty store returns no candidates.
func (s *Store) Search(_ context.Context, query []float32, k int) ([]domain.Candidate, error) {
	cur := s.current.Load()
	if cur.index.Len() == 0 || k <= 0 {
		return nil, nil
	}

	hits, err := cur.index.Search(query, k)
	if err != nil {
		if errors.Is(err, flat.ErrDimensionMismatch) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(cur.chunks) {
			return nil, fmt.Errorf("%w: hit at position %d of %d chunks", domain.ErrConsistency, hit.Position, len(cur.chunks))
		}
		candidates = append(candidates, domain.Candidate{
			Chunk: cur.chunks[hit.Position],
			Score: hit.Score,
		})
	}

	return candidates, nil
}

// Documents returns all documents ordered by upload time, then ID.
func (s *Store) Documents() []domain.Document {
	docs := slices.Collect(maps.Values(s.current.Load().documents))
	slices.SortFunc(docs, func(a, b domain.Document) int {
		if c := a.UploadTime.Compare(b.UploadTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return docs
}

// Document returns a document by ID.
func (s *Store) Document(documentID string) (domain.Document, bool) {
	doc, ok := s.current.Load().documents[documentID]
	return doc, ok
}

// HasDocument reports whether a document is stored.
func (s *Store) HasDocument(documentID string) bool {
	_, ok := s.Document(documentID)
	return ok
}

// DocumentCount returns the number of stored documents.
func (s *Store) DocumentCount() int {
	return len(s.current.Load().documents)
}

// ChunkCount returns the number of indexed chunks.
func (s *Store) ChunkCount() int {
	return len(s.current.Load().chunks)
}

// Snapshot returns a copy of the current state in persistence form.
func (s *Store) Snapshot() *domain.IndexSnapshot {
	return toIndexSnapshot(s.current.Load())
}

// Dimensions returns the vector dimension.
func (s *Store) Dimensions() int {
	return s.dim
}

// fromSnapshot validates a persisted snapshot and builds the in-memory state.
func (s *Store) fromSnapshot(snap *domain.IndexSnapshot) (*snapshot, error) {
	if snap == nil {
		snap = &domain.IndexSnapshot{}
	}
	if len(snap.Vectors) != len(snap.Chunks) {
		return nil, fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrConsistency, len(snap.Vectors), len(snap.Chunks))
	}

	index, err := flat.FromVectors(s.dim, snap.Vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConsistency, err)
	}

	documents := make(map[string]domain.Document, len(snap.Documents))
	for _, doc := range snap.Documents {
		documents[doc.ID] = doc
	}

	chunkCounts := make(map[string]int, len(documents))
	pageCounts := make(map[string]int, len(documents))
	for i := range snap.Chunks {
		c := snap.Chunks[i]
		if _, ok := documents[c.DocumentID]; !ok {
			return nil, fmt.Errorf("%w: chunk %s at position %d has no document %s",
				domain.ErrConsistency, c.ID, i, c.DocumentID)
		}
		chunkCounts[c.DocumentID]++
		pageCounts[c.DocumentID] = max(pageCounts[c.DocumentID], c.PageNumber)
	}
	for id, doc := range documents {
		if chunkCounts[id] != doc.ChunkCount || pageCounts[id] != doc.PageCount {
			return nil, fmt.Errorf("%w: document %s records %d chunks over %d pages, index holds %d over %d",
				domain.ErrConsistency, id, doc.ChunkCount, doc.PageCount, chunkCounts[id], pageCounts[id])
		}
	}

	next := &snapshot{
		index:     index,
		chunks:    slices.Clone(snap.Chunks),
		documents: documents,
	}
	return next, next.aligned()
}

func toIndexSnapshot(s *snapshot) *domain.IndexSnapshot {
	docs := slices.Collect(maps.Values(s.documents))
	slices.SortFunc(docs, func(a, b domain.Document) int { return cmp.Compare(a.ID, b.ID) })

	return &domain.IndexSnapshot{
		Vectors:   slices.Clone(s.index.Vectors()),
		Chunks:    slices.Clone(s.chunks),
		Documents: docs,
	}
}

// providerError classifies an embedding failure as a provider error.
func providerError(op string, err error) error {
	if errors.Is(err, domain.ErrProvider) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrProvider, err)
}
