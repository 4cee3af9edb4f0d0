package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// Adapters wrap them with %w so callers can classify with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input such as a
	// non-PDF upload, an empty payload or an empty question.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyResult indicates there was nothing to work with: no extractable
	// text, no chunks, an empty store or zero search hits.
	ErrEmptyResult = errors.New("empty result")

	// ErrProvider indicates an embedding or generation call failed or
	// returned output that could not be used.
	ErrProvider = errors.New("provider error")

	// ErrConsistency indicates the vector and chunk sequences are no longer
	// aligned. It is never expected and aborts the operation.
	ErrConsistency = errors.New("index consistency violated")

	// ErrUnsupportedType indicates an unknown provider or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured or
	// could not be reached.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrExtractorUnavailable indicates the text extraction tool is missing
	// on this host.
	ErrExtractorUnavailable = errors.New("text extractor unavailable")

	// ErrConfigNotFound indicates a configuration key has no value.
	ErrConfigNotFound = errors.New("config key not found")
)

// Empty results with a specific cause. All of them match ErrEmptyResult.
var (
	// ErrNoDocuments indicates a question was asked before any upload.
	ErrNoDocuments = fmt.Errorf("no documents uploaded: %w", ErrEmptyResult)

	// ErrNoMatches indicates retrieval found no candidate passages.
	ErrNoMatches = fmt.Errorf("no relevant information found: %w", ErrEmptyResult)

	// ErrNoText indicates a PDF produced no chunks.
	ErrNoText = fmt.Errorf("could not extract text from PDF: %w", ErrEmptyResult)
)
