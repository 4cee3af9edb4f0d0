package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestFormatAnswer(t *testing.T) {
	answer := &domain.Answer{
		Answer: "Two years.",
		Citations: []domain.Citation{
			{DocumentName: "manual.pdf", PageNumber: 3},
			{DocumentName: "faq.pdf", PageNumber: 1},
		},
	}

	assert.Equal(t, "Two years.\n\nSources:\n[1] manual.pdf, page 3\n[2] faq.pdf, page 1\n", FormatAnswer(answer))
	assert.Equal(t, "Plain.", FormatAnswer(&domain.Answer{Answer: "Plain."}))
}

func TestAnswerActionService_CopyAnswer(t *testing.T) {
	svc := NewAnswerActionService(nil)
	var copied string
	svc.copy = func(text string) error {
		copied = text
		return nil
	}

	require.NoError(t, svc.CopyAnswer(context.Background(), &domain.Answer{Answer: "yes"}))
	assert.Equal(t, "yes", copied)

	assert.Error(t, svc.CopyAnswer(context.Background(), nil))
}

func TestAnswerActionService_OpenDocument(t *testing.T) {
	uploads := memory.NewUploadStore()
	_, err := uploads.Save("doc-1", pdfBytes)
	require.NoError(t, err)

	svc := NewAnswerActionService(uploads)
	var opened string
	svc.open = func(path string) error {
		opened = path
		return nil
	}

	require.NoError(t, svc.OpenDocument(context.Background(), "doc-1"))
	assert.Equal(t, "memory://doc-1", opened)

	err = svc.OpenDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = NewAnswerActionService(nil).OpenDocument(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort("127.0.0.1", 20000, 20100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 20000)
	assert.LessOrEqual(t, port, 20100)

	_, err = FindAvailablePort("127.0.0.1", 10, 5)
	assert.Error(t, err)
}
