package domain

import "encoding/json"

// Candidate is a retrieved chunk with its similarity score.
type Candidate struct {
	Chunk Chunk
	Score float32
}

// Citation points an answer back at the passage that supports it.
type Citation struct {
	DocumentName   string  `json:"document_name"`
	PageNumber     int     `json:"page_number"`
	TextExcerpt    string  `json:"text_excerpt"`
	RelevanceScore float32 `json:"relevance_score"`
}

// Answer is the assembled response to a question.
type Answer struct {
	Answer           string     `json:"answer"`
	Confidence       float64    `json:"confidence"`
	Citations        []Citation `json:"citations"`
	ProcessingTimeMS int64      `json:"processing_time_ms"`
}

// Draft is the structured output requested from the generator.
// None of it is trusted until it has been repaired into an Answer.
type Draft struct {
	Answer     string        `json:"answer"`
	Confidence *float64      `json:"confidence"`
	Citations  []CitationRef `json:"citations"`
}

// CitationRef is a generator's reference to a numbered source.
type CitationRef struct {
	SourceNumber int    `json:"source_number"`
	Relevance    string `json:"relevance,omitempty"`
}

// UnmarshalJSON defaults a missing source_number to 1, the top source.
func (r *CitationRef) UnmarshalJSON(data []byte) error {
	type plain CitationRef
	ref := plain{SourceNumber: 1}
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	*r = CitationRef(ref)
	return nil
}

// IngestResult summarises a completed ingestion.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
}

// Health reports service readiness.
type Health struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	EmbeddingModel  string `json:"embedding_model"`
	DocumentsLoaded int    `json:"documents_loaded"`
}
