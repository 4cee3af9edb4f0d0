// Package filesystem watches a local directory for PDF changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// DefaultSettle is how long a path must be quiet before its change is
// emitted. Copying a large PDF produces a create followed by many writes.
const DefaultSettle = 500 * time.Millisecond

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("filesystem: watcher is closed")

// Ensure Watcher implements the interface.
var _ driven.FolderWatcher = (*Watcher)(nil)

// Watcher watches the top level of one directory. Subdirectories,
// hidden files and non-PDF files are ignored.
type Watcher struct {
	rootPath string
	settle   time.Duration

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period. Zero emits every event immediately.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// New creates a watcher for rootPath.
func New(rootPath string, opts ...Option) *Watcher {
	w := &Watcher{
		rootPath: rootPath,
		settle:   DefaultSettle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Factory adapts New to driven.FolderWatcherFactory.
func Factory(opts ...Option) driven.FolderWatcherFactory {
	return func(dir string) driven.FolderWatcher {
		return New(dir, opts...)
	}
}

// Watch starts watching and streams settled changes.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	info, err := os.Stat(w.rootPath)
	if err != nil {
		return nil, fmt.Errorf("filesystem: root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filesystem: root path error: %s is not a directory", w.rootPath)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filesystem: create watcher: %w", err)
	}
	if err := fsw.Add(w.rootPath); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("filesystem: watch %s: %w", w.rootPath, err)
	}
	w.watchers = append(w.watchers, fsw)

	out := make(chan domain.FileChange)
	go w.run(ctx, fsw, out)

	logger.Debug("Watching %s", w.rootPath)
	return out, nil
}

type pendingEvent struct {
	op  fsnotify.Op
	due time.Time
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, out chan<- domain.FileChange) {
	defer close(out)
	defer fsw.Close()

	pending := make(map[string]pendingEvent)
	var tick <-chan time.Time
	if w.settle > 0 {
		ticker := time.NewTicker(max(w.settle/4, 10*time.Millisecond))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.settle == 0 {
				if !w.emit(ctx, out, event) {
					return
				}
				continue
			}
			pending[event.Name] = merge(pending[event.Name], event.Op, time.Now().Add(w.settle))

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error on %s: %v", w.rootPath, err)

		case now := <-tick:
			for name, p := range pending {
				if now.Before(p.due) {
					continue
				}
				delete(pending, name)
				if !w.emit(ctx, out, fsnotify.Event{Name: name, Op: p.op}) {
					return
				}
			}
		}
	}
}

// merge folds a new op into a pending one. A create followed by writes
// stays a create.
func merge(prev pendingEvent, op fsnotify.Op, due time.Time) pendingEvent {
	if prev.op.Has(fsnotify.Create) && op.Has(fsnotify.Write) {
		return pendingEvent{op: prev.op, due: due}
	}
	return pendingEvent{op: op, due: due}
}

func (w *Watcher) emit(ctx context.Context, out chan<- domain.FileChange, event fsnotify.Event) bool {
	change := w.handleFsEvent(event)
	if change == nil {
		return true
	}
	select {
	case out <- *change:
		return true
	case <-ctx.Done():
		return false
	}
}

// handleFsEvent converts an fsnotify event to a change, or nil when the
// event is irrelevant.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	if !isPDF(event.Name) || w.isHidden(event.Name) {
		return nil
	}

	var changeType domain.ChangeType
	switch {
	case event.Op.Has(fsnotify.Create):
		changeType = domain.ChangeCreated
	case event.Op.Has(fsnotify.Write):
		changeType = domain.ChangeUpdated
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: event.Name}
	default:
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil
	}
	content, err := os.ReadFile(event.Name)
	if err != nil {
		logger.Warn("Failed to read %s: %v", event.Name, err)
		return nil
	}

	return &domain.FileChange{Type: changeType, Path: event.Name, Content: content}
}

// Close stops all running watches.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for _, fsw := range w.watchers {
		if err := fsw.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.watchers = nil
	return errors.Join(errs...)
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// isHidden reports whether any path component below the root starts with a dot.
func (w *Watcher) isHidden(path string) bool {
	rel, err := filepath.Rel(w.rootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
