package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewAsk, "ask"},
		{ViewDocuments, "documents"},
		{ViewDocDetails, "doc_details"},
		{ViewSettings, "settings"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestAnswerCompleted(t *testing.T) {
	t.Run("with answer", func(t *testing.T) {
		msg := AnswerCompleted{
			Question: "what?",
			Answer:   &domain.Answer{Answer: "that", Confidence: 0.7},
		}
		assert.NoError(t, msg.Err)
		assert.Equal(t, "that", msg.Answer.Answer)
	})

	t.Run("with error", func(t *testing.T) {
		msg := AnswerCompleted{Question: "what?", Err: domain.ErrNoMatches}
		assert.Nil(t, msg.Answer)
		assert.True(t, errors.Is(msg.Err, domain.ErrEmptyResult))
	})
}
