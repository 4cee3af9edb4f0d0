package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions with retrieval followed by generation.
type QueryService struct {
	store     *Store
	retriever *Retriever
	assembler *AnswerAssembler
	now       func() time.Time
}

// NewQueryService creates a query service.
func NewQueryService(store *Store, retriever *Retriever, assembler *AnswerAssembler) *QueryService {
	return &QueryService{
		store:     store,
		retriever: retriever,
		assembler: assembler,
		now:       time.Now,
	}
}

// Ask retrieves relevant passages and returns a cited answer.
func (s *QueryService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	start := s.now()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(question); n > driving.MaxQuestionLength {
		return nil, fmt.Errorf("%w: question is %d characters, the limit is %d",
			domain.ErrInvalidInput, n, driving.MaxQuestionLength)
	}

	if s.store.DocumentCount() == 0 {
		return nil, domain.ErrNoDocuments
	}

	candidates, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoMatches
	}

	answer, err := s.assembler.Assemble(ctx, question, candidates)
	if err != nil {
		return nil, err
	}

	elapsed := s.now().Sub(start)
	answer.ProcessingTimeMS = elapsed.Milliseconds()
	logger.Info("Answered in %s with %d citations (confidence %.2f)", elapsed, len(answer.Citations), answer.Confidence)

	return answer, nil
}
