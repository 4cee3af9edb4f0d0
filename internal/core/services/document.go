package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// HealthStatus is reported by a serving instance.
const HealthStatus = "healthy"

// DocumentService manages ingested documents.
type DocumentService struct {
	store          *Store
	uploads        driven.UploadStore
	version        string
	embeddingModel string
}

// NewDocumentService creates a new document service.
func NewDocumentService(store *Store, uploads driven.UploadStore, version, embeddingModel string) *DocumentService {
	return &DocumentService{
		store:          store,
		uploads:        uploads,
		version:        version,
		embeddingModel: embeddingModel,
	}
}

// List returns all documents ordered by upload time.
func (s *DocumentService) List(_ context.Context) ([]domain.Document, error) {
	return s.store.Documents(), nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	doc, ok := s.store.Document(documentID)
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return &doc, nil
}

// Delete removes a document, its chunks and its vectors, then the retained
// upload. A leftover upload file is logged, not returned.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if err := s.store.RemoveDocument(ctx, documentID); err != nil {
		return err
	}

	if s.uploads != nil {
		if err := s.uploads.Remove(documentID); err != nil {
			logger.Warn("Failed to remove upload for %s: %v", documentID, err)
		}
	}
	return nil
}

// Health reports readiness and the number of loaded documents.
func (s *DocumentService) Health(_ context.Context) domain.Health {
	return domain.Health{
		Status:          HealthStatus,
		Version:         s.version,
		EmbeddingModel:  s.embeddingModel,
		DocumentsLoaded: s.store.DocumentCount(),
	}
}
