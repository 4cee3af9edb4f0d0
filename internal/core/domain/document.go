package domain

import "time"

// Document is an ingested PDF and the aggregate of its chunks.
// It is recorded only once all of its chunks and vectors are committed.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"document_id"`

	// Filename is the display name supplied at upload.
	Filename string `json:"filename"`

	// UploadTime is when ingestion completed.
	UploadTime time.Time `json:"upload_time"`

	// PageCount is the highest page number among the document's chunks.
	PageCount int `json:"page_count"`

	// ChunkCount is the number of chunks carrying this document's ID.
	ChunkCount int `json:"chunk_count"`

	// FileSize is the size of the uploaded payload in bytes.
	FileSize int64 `json:"file_size"`
}

// Chunk is a bounded span of one page of a document and the unit of
// retrieval. Chunks are immutable once created.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string `json:"chunk_id"`

	// DocumentID links to the parent Document.
	DocumentID string `json:"document_id"`

	// DocumentName is the parent document's filename.
	DocumentName string `json:"document_name"`

	// PageNumber is the 1-indexed page the text came from.
	PageNumber int `json:"page_number"`

	// Index is the chunk's position within its document. It increases
	// across pages without gaps or resets.
	Index int `json:"chunk_index"`

	// Text is the sanitized chunk text.
	Text string `json:"text"`
}

// Page is the raw text of a single PDF page.
type Page struct {
	// Number is the 1-indexed page number.
	Number int

	// Text is the extracted text before sanitizing.
	Text string
}

// PageCountOf returns the highest page number among chunks.
func PageCountOf(chunks []Chunk) int {
	pages := 0
	for i := range chunks {
		if chunks[i].PageNumber > pages {
			pages = chunks[i].PageNumber
		}
	}
	return pages
}
