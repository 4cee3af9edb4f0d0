package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns uploaded PDFs into indexed documents.
type IngestService struct {
	extractor driven.PageExtractor
	chunker   driven.Chunker
	store     *Store
	uploads   driven.UploadStore
	newID     func() string
}

// NewIngestService creates an ingest service. uploads may be nil, in which
// case the original files are not retained.
func NewIngestService(
	extractor driven.PageExtractor,
	chunker driven.Chunker,
	store *Store,
	uploads driven.UploadStore,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		chunker:   chunker,
		store:     store,
		uploads:   uploads,
		newID:     uuid.NewString,
	}
}

// Ingest extracts, chunks, embeds and stores a PDF payload.
func (s *IngestService) Ingest(ctx context.Context, filename string, content []byte) (_ *domain.IngestResult, err error) {
	filename = filepath.Base(filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are supported", domain.ErrInvalidInput)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty file uploaded", domain.ErrInvalidInput)
	}

	documentID := s.newID()
	logger.Section("Ingest")
	logger.Info("Ingesting %s as %s (%d bytes)", filename, documentID, len(content))

	if s.uploads != nil {
		if _, err := s.uploads.Save(documentID, content); err != nil {
			return nil, fmt.Errorf("save upload: %w", err)
		}
		defer func() {
			if err == nil {
				return
			}
			if rmErr := s.uploads.Remove(documentID); rmErr != nil {
				logger.Warn("Failed to remove upload for %s: %v", documentID, rmErr)
			}
		}()
	}

	pages, err := s.extractor.ExtractPages(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	logger.Debug("Extracted %d pages from %s", len(pages), filename)

	chunks := s.chunker.ChunkPages(documentID, filename, pages)
	if len(chunks) == 0 {
		return nil, domain.ErrNoText
	}
	logger.Debug("Split %s into %d chunks with %s", filename, len(chunks), s.chunker.Name())

	doc, err := s.store.AddDocument(ctx, documentID, filename, chunks, int64(len(content)))
	if err != nil {
		if errors.Is(err, domain.ErrEmptyResult) {
			return nil, domain.ErrNoText
		}
		return nil, err
	}

	return &domain.IngestResult{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		PageCount:  doc.PageCount,
		ChunkCount: doc.ChunkCount,
	}, nil
}
