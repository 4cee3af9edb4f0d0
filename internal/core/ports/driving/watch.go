package driving

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// WatchService keeps a folder of PDFs in sync with the index.
type WatchService interface {
	// Watch ingests PDFs created in dir until ctx is cancelled. Files
	// ingested by this call are re-ingested when rewritten and removed
	// from the index when deleted. report receives one event per change
	// and may be nil.
	Watch(ctx context.Context, dir string, report func(domain.WatchEvent)) error
}
