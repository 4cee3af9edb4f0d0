package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func waitForChange(t *testing.T, changes <-chan domain.FileChange) domain.FileChange {
	t.Helper()
	select {
	case change, ok := <-changes:
		require.True(t, ok, "channel closed before a change arrived")
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file change")
		return domain.FileChange{}
	}
}

func TestNew(t *testing.T) {
	w := New("/tmp/docs")

	require.NotNil(t, w)
	assert.Equal(t, "/tmp/docs", w.rootPath)
	assert.Equal(t, DefaultSettle, w.settle)

	w = New("/tmp/docs", WithSettle(0))
	assert.Zero(t, w.settle)

	w = New("/tmp/docs", WithSettle(-time.Second))
	assert.Equal(t, DefaultSettle, w.settle, "negative settle is ignored")
}

func TestFactory(t *testing.T) {
	watcher := Factory(WithSettle(0))("/tmp/docs")

	w, ok := watcher.(*Watcher)
	require.True(t, ok)
	assert.Equal(t, "/tmp/docs", w.rootPath)
	assert.Zero(t, w.settle)
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("emits created PDF with content", func(t *testing.T) {
		dir := t.TempDir()
		w := New(dir, WithSettle(50*time.Millisecond))
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(dir, "report.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 body"), 0o644))

		change := waitForChange(t, changes)
		assert.Equal(t, domain.ChangeCreated, change.Type)
		assert.Equal(t, path, change.Path)
		assert.Equal(t, []byte("%PDF-1.4 body"), change.Content)
	})

	t.Run("ignores non-PDF and hidden files", func(t *testing.T) {
		dir := t.TempDir()
		w := New(dir, WithSettle(20*time.Millisecond))
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".draft.pdf"), []byte("x"), 0o644))
		path := filepath.Join(dir, "final.pdf")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		change := waitForChange(t, changes)
		assert.Equal(t, path, change.Path)
	})

	t.Run("emits deletion", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "old.pdf")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		w := New(dir, WithSettle(0))
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))

		change := waitForChange(t, changes)
		assert.Equal(t, domain.ChangeDeleted, change.Type)
		assert.Empty(t, change.Content)
	})

	t.Run("returns error for missing directory", func(t *testing.T) {
		w := New("/non/existent/path")

		changes, err := w.Watch(context.Background())

		require.Error(t, err)
		assert.Nil(t, changes)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("returns error for a file root", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a.pdf")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := New(file).Watch(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		w := New(t.TempDir())
		defer w.Close()
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := w.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when closed", func(t *testing.T) {
		w := New(t.TempDir())
		require.NoError(t, w.Close())

		changes, err := w.Watch(context.Background())

		assert.ErrorIs(t, err, ErrClosed)
		assert.Nil(t, changes)
	})
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w := New(t.TempDir())
	_, err := w.Watch(context.Background())
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		create    bool
		dir       bool
		op        fsnotify.Op
		wantType  domain.ChangeType
		wantEvent bool
	}{
		{name: "create", file: "a.pdf", create: true, op: fsnotify.Create, wantType: domain.ChangeCreated, wantEvent: true},
		{name: "write", file: "a.pdf", create: true, op: fsnotify.Write, wantType: domain.ChangeUpdated, wantEvent: true},
		{name: "write with chmod", file: "a.pdf", create: true, op: fsnotify.Write | fsnotify.Chmod, wantType: domain.ChangeUpdated, wantEvent: true},
		{name: "upper-case extension", file: "A.PDF", create: true, op: fsnotify.Create, wantType: domain.ChangeCreated, wantEvent: true},
		{name: "remove", file: "a.pdf", op: fsnotify.Remove, wantType: domain.ChangeDeleted, wantEvent: true},
		{name: "rename", file: "a.pdf", op: fsnotify.Rename, wantType: domain.ChangeDeleted, wantEvent: true},
		{name: "chmod only", file: "a.pdf", create: true, op: fsnotify.Chmod},
		{name: "not a pdf", file: "a.txt", create: true, op: fsnotify.Create},
		{name: "hidden", file: ".a.pdf", create: true, op: fsnotify.Create},
		{name: "directory named like a pdf", file: "folder.pdf", dir: true, op: fsnotify.Create},
		{name: "created then vanished", file: "gone.pdf", op: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			switch {
			case tt.dir:
				require.NoError(t, os.Mkdir(path, 0o755))
			case tt.create:
				require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
			}

			change := New(dir).handleFsEvent(fsnotify.Event{Name: path, Op: tt.op})

			if !tt.wantEvent {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.wantType, change.Type)
			assert.Equal(t, path, change.Path)
			if tt.wantType != domain.ChangeDeleted {
				assert.Equal(t, []byte("content"), change.Content)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	due := time.Now()

	got := merge(pendingEvent{op: fsnotify.Create}, fsnotify.Write, due)
	assert.Equal(t, fsnotify.Create, got.op)
	assert.Equal(t, due, got.due)

	got = merge(pendingEvent{op: fsnotify.Write}, fsnotify.Remove, due)
	assert.Equal(t, fsnotify.Remove, got.op)

	got = merge(pendingEvent{}, fsnotify.Write, due)
	assert.Equal(t, fsnotify.Write, got.op)
}

func TestIsHidden(t *testing.T) {
	w := New("/docs")

	tests := []struct {
		path string
		want bool
	}{
		{"/docs/a.pdf", false},
		{"/docs/.a.pdf", true},
		{"/docs/.cache/a.pdf", true},
		{"/docs/sub/a.pdf", false},
		{"/elsewhere/.x/a.pdf", true},
		{"/elsewhere/a.pdf", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.isHidden(tt.path), tt.path)
	}
}
