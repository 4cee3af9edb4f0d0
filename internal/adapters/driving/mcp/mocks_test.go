package mcp

import (
	"context"
	"testing"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer   *domain.Answer
	err      error
	question string
}

func (m *mockQueryService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	health    domain.Health
	err       error
	deleted   string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, documentID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = documentID
	return nil
}

func (m *mockDocumentService) Health(_ context.Context) domain.Health {
	return m.health
}

func newTestServer(t testing.TB, query *mockQueryService, docs *mockDocumentService) (*Server, error) {
	t.Helper()
	if query == nil {
		query = &mockQueryService{}
	}
	if docs == nil {
		docs = &mockDocumentService{}
	}
	return NewServer(&Ports{Query: query, Document: docs})
}
