package driving

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// AnswerActionService provides actions on answers and their sources.
// This is used by the TUI and CLI adapters.
type AnswerActionService interface {
	// CopyAnswer copies the answer text and its citations to the system clipboard.
	CopyAnswer(ctx context.Context, answer *domain.Answer) error

	// OpenDocument opens the retained PDF of a document in the default viewer.
	OpenDocument(ctx context.Context, documentID string) error
}
