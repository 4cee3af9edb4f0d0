package driving

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// MaxQuestionLength is the longest accepted question, in characters.
const MaxQuestionLength = 1000

// QueryService answers questions against the ingested documents.
type QueryService interface {
	// Ask retrieves relevant passages and returns a cited answer.
	// Returns domain.ErrEmptyResult when there are no documents or no hits.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}
