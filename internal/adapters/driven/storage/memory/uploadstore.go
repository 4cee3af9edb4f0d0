package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure UploadStore implements the interface.
var _ driven.UploadStore = (*UploadStore)(nil)

// UploadStore keeps uploaded payloads in memory.
type UploadStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewUploadStore creates an empty upload store.
func NewUploadStore() *UploadStore {
	return &UploadStore{files: make(map[string][]byte)}
}

// Save stores the payload for a document.
func (s *UploadStore) Save(documentID string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[documentID] = slices.Clone(content)
	return "memory://" + documentID, nil
}

// Remove deletes the payload for a document.
func (s *UploadStore) Remove(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, documentID)
	return nil
}

// Has reports whether a payload is stored.
func (s *UploadStore) Has(documentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[documentID]
	return ok
}

// Len returns the number of stored payloads.
func (s *UploadStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Path returns a pseudo location for a stored payload.
func (s *UploadStore) Path(documentID string) (string, error) {
	if !s.Has(documentID) {
		return "", fmt.Errorf("upload %s: %w", documentID, domain.ErrNotFound)
	}
	return "memory://" + documentID, nil
}
