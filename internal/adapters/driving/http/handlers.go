package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/logger"
)

// MaxUploadSize is the largest accepted PDF.
const MaxUploadSize = 50 << 20

// multipartOverhead allows for the form framing around the file.
const multipartOverhead = 1 << 20

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	domain.IngestResult
	Message string `json:"message"`
}

// DocumentListResponse is returned by GET /api/documents.
type DocumentListResponse struct {
	Documents  []domain.Document `json:"documents"`
	TotalCount int               `json:"total_count"`
}

// DeleteResponse is returned by DELETE /api/documents/{id}.
type DeleteResponse struct {
	DocumentID string `json:"document_id"`
	Message    string `json:"message"`
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.documentService.Health(r.Context()))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the 50 MB limit")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}
	if len(content) > MaxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the 50 MB limit")
		return
	}

	result, err := s.ingestService.Ingest(r.Context(), header.Filename, content)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		IngestResult: *result,
		Message: fmt.Sprintf("Successfully processed %s: %d pages, %d chunks",
			result.Filename, result.PageCount, result.ChunkCount),
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documentService.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{
		Documents:  docs,
		TotalCount: len(docs),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.documentService.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteResponse{
		DocumentID: id,
		Message:    "Document deleted successfully",
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := s.queryService.Ask(r.Context(), req.Question)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if answer.Citations == nil {
		answer.Citations = []domain.Citation{}
	}

	writeJSON(w, http.StatusOK, answer)
}

// StatusFor maps a service error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoMatches):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyResult):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrExtractorUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrProvider),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with its mapped status. Server errors get a
// generic body and are logged.
func writeDomainError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
		writeError(w, status, "internal server error")
		return
	}
	switch status {
	case http.StatusBadGateway:
		logger.Warn("provider failure: %v", err)
	case http.StatusServiceUnavailable:
		logger.Error("request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
