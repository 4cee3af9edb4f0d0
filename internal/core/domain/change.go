package domain

// ChangeType classifies a file change seen in a watched folder.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// FileChange is a settled change to a PDF in a watched folder.
// Content is empty for deletions.
type FileChange struct {
	Type    ChangeType
	Path    string
	Content []byte
}

// WatchAction is what the watch loop did with a change.
type WatchAction string

// Watch actions.
const (
	WatchIngested WatchAction = "ingested"
	WatchReplaced WatchAction = "replaced"
	WatchRemoved  WatchAction = "removed"
	WatchSkipped  WatchAction = "skipped"
	WatchFailed   WatchAction = "failed"
)

// WatchEvent reports the outcome of one change.
type WatchEvent struct {
	Path       string
	Action     WatchAction
	DocumentID string
	ChunkCount int
	Err        error
}
