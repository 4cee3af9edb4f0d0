package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// WatchService ingests PDFs that appear in a watched folder.
type WatchService struct {
	ingest     driving.IngestService
	documents  driving.DocumentService
	newWatcher driven.FolderWatcherFactory
}

// NewWatchService creates a new watch service.
func NewWatchService(
	ingest driving.IngestService,
	documents driving.DocumentService,
	newWatcher driven.FolderWatcherFactory,
) *WatchService {
	return &WatchService{
		ingest:     ingest,
		documents:  documents,
		newWatcher: newWatcher,
	}
}

// Watch runs until ctx is cancelled. Only files ingested by this call are
// tracked; deleting a PDF that was ingested earlier leaves its document alone.
func (s *WatchService) Watch(ctx context.Context, dir string, report func(domain.WatchEvent)) error {
	if s.ingest == nil || s.newWatcher == nil {
		return errors.New("watch: ingest service and watcher are required")
	}
	if report == nil {
		report = func(domain.WatchEvent) {}
	}

	watcher := s.newWatcher(dir)
	defer watcher.Close()

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	tracked := make(map[string]string) // path -> document id
	for change := range changes {
		report(s.apply(ctx, tracked, change))
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *WatchService) apply(ctx context.Context, tracked map[string]string, change domain.FileChange) domain.WatchEvent {
	event := domain.WatchEvent{Path: change.Path}
	previous, known := tracked[change.Path]

	switch change.Type {
	case domain.ChangeDeleted:
		if !known {
			event.Action = domain.WatchSkipped
			return event
		}
		delete(tracked, change.Path)
		event.DocumentID = previous
		if err := s.remove(ctx, previous); err != nil {
			event.Action, event.Err = domain.WatchFailed, err
			return event
		}
		event.Action = domain.WatchRemoved
		return event

	case domain.ChangeCreated, domain.ChangeUpdated:
		// A tracked path is replaced whatever the event type: renaming a
		// temp file over the target arrives as a Create. The new content is
		// ingested before the old document goes, so a failed rewrite keeps it.
		result, err := s.ingest.Ingest(ctx, filepath.Base(change.Path), change.Content)
		if err != nil {
			logger.Warn("Failed to ingest %s: %v", change.Path, err)
			event.Action, event.Err = domain.WatchFailed, err
			return event
		}
		tracked[change.Path] = result.DocumentID
		event.DocumentID = result.DocumentID
		event.ChunkCount = result.ChunkCount
		event.Action = domain.WatchIngested

		if known {
			if err := s.remove(ctx, previous); err != nil {
				logger.Warn("Failed to remove replaced document %s: %v", previous, err)
				event.Action, event.Err = domain.WatchFailed, err
				return event
			}
			event.Action = domain.WatchReplaced
		}
		return event
	}

	event.Action = domain.WatchSkipped
	return event
}

func (s *WatchService) remove(ctx context.Context, documentID string) error {
	if s.documents == nil {
		return nil
	}
	err := s.documents.Delete(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
