package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	AskFunc func(ctx context.Context, question string) (*domain.Answer, error)
}

func (m *MockQueryService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return &domain.Answer{Answer: "ok"}, nil
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	ListFunc   func(ctx context.Context) ([]domain.Document, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockDocumentService) List(ctx context.Context) ([]domain.Document, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockDocumentService) Health(_ context.Context) domain.Health {
	return domain.Health{Status: "healthy"}
}

// MockActionService implements driving.AnswerActionService for testing.
type MockActionService struct{}

func (m *MockActionService) CopyAnswer(_ context.Context, _ *domain.Answer) error { return nil }

func (m *MockActionService) OpenDocument(_ context.Context, _ string) error { return nil }

// Compile-time checks.
var (
	_ driving.QueryService        = (*MockQueryService)(nil)
	_ driving.DocumentService     = (*MockDocumentService)(nil)
	_ driving.AnswerActionService = (*MockActionService)(nil)
)

func TestNewPorts(t *testing.T) {
	query := &MockQueryService{}
	docs := &MockDocumentService{}

	ports := NewPorts(query, docs)

	require.NotNil(t, ports)
	assert.Equal(t, query, ports.Query)
	assert.Equal(t, docs, ports.Document)
	assert.Nil(t, ports.Actions)
	assert.Nil(t, ports.Settings)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{
			name:  "all required set",
			ports: &Ports{Query: &MockQueryService{}, Document: &MockDocumentService{}},
		},
		{
			name: "optional ports set",
			ports: &Ports{
				Query:    &MockQueryService{},
				Document: &MockDocumentService{},
				Actions:  &MockActionService{},
			},
		},
		{
			name:    "missing query",
			ports:   &Ports{Document: &MockDocumentService{}},
			wantErr: ErrMissingQueryService,
		},
		{
			name:    "missing document",
			ports:   &Ports{Query: &MockQueryService{}},
			wantErr: ErrMissingDocumentService,
		},
		{
			name:    "empty",
			ports:   &Ports{},
			wantErr: ErrMissingQueryService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
