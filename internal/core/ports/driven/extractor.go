package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// PageExtractor turns a PDF payload into per-page raw text.
// Pages are returned in order with 1-indexed numbers. Pages without text
// are still returned so that numbering stays faithful to the file.
type PageExtractor interface {
	ExtractPages(ctx context.Context, content []byte) ([]domain.Page, error)
}
