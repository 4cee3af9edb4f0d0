package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the ingested PDFs"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents  []DocumentOutput `json:"documents"`
	TotalCount int              `json:"total_count"`
}

// DocumentOutput represents a single ingested document.
type DocumentOutput struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	UploadTime string `json:"upload_time"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	FileSize   int64  `json:"file_size"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the id of the document to delete"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	DocumentID string `json:"document_id"`
	Message    string `json:"message"`
}

// HealthInput is the input schema for the health tool.
type HealthInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the ingested PDF documents, with page citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the ingested PDF documents",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete an ingested document and its index entries",
	}, s.handleDeleteDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "health",
		Description: "Report service status and the number of loaded documents",
	}, s.handleHealth)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, domain.Answer, error) {
	answer, err := s.ports.Query.Ask(ctx, input.Question)
	if err != nil {
		return nil, domain.Answer{}, err
	}
	return nil, *answer, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	output := ListDocumentsOutput{
		Documents:  make([]DocumentOutput, len(docs)),
		TotalCount: len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			DocumentID: docs[i].ID,
			Filename:   docs[i].Filename,
			UploadTime: docs[i].UploadTime.Format(time.RFC3339),
			PageCount:  docs[i].PageCount,
			ChunkCount: docs[i].ChunkCount,
			FileSize:   docs[i].FileSize,
		}
	}
	return nil, output, nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if input.DocumentID == "" {
		return nil, DeleteDocumentOutput{}, fmt.Errorf("document_id: %w", domain.ErrInvalidInput)
	}
	if err := s.ports.Document.Delete(ctx, input.DocumentID); err != nil {
		return nil, DeleteDocumentOutput{}, err
	}
	return nil, DeleteDocumentOutput{
		DocumentID: input.DocumentID,
		Message:    "Document deleted successfully",
	}, nil
}

func (s *Server) handleHealth(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ HealthInput,
) (*mcp.CallToolResult, domain.Health, error) {
	return nil, s.ports.Document.Health(ctx), nil
}
