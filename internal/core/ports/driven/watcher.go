package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// FolderWatcher reports settled changes to PDFs in one directory.
type FolderWatcher interface {
	// Watch streams changes until ctx is cancelled or the watcher is
	// closed, then closes the channel.
	Watch(ctx context.Context) (<-chan domain.FileChange, error)

	// Close stops the watcher. It is safe to call more than once.
	Close() error
}

// FolderWatcherFactory creates a watcher for dir.
type FolderWatcherFactory func(dir string) FolderWatcher
