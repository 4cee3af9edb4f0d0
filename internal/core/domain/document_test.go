package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCountOf(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []Chunk
		expected int
	}{
		{name: "no chunks", chunks: nil, expected: 0},
		{name: "single page", chunks: []Chunk{{PageNumber: 1}}, expected: 1},
		{
			name:     "pages out of order",
			chunks:   []Chunk{{PageNumber: 2}, {PageNumber: 7}, {PageNumber: 3}},
			expected: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PageCountOf(tt.chunks))
		})
	}
}

func TestDocument_JSON(t *testing.T) {
	doc := Document{
		ID:         "doc-1",
		Filename:   "report.pdf",
		UploadTime: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		PageCount:  4,
		ChunkCount: 9,
		FileSize:   2048,
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "doc-1", fields["document_id"])
	assert.Equal(t, "report.pdf", fields["filename"])
	assert.EqualValues(t, 4, fields["page_count"])
	assert.EqualValues(t, 9, fields["chunk_count"])
	assert.EqualValues(t, 2048, fields["file_size"])
}

func TestDraft_MissingConfidence(t *testing.T) {
	var draft Draft
	require.NoError(t, json.Unmarshal([]byte(`{"answer":"x","citations":[{"source_number":2}]}`), &draft))

	assert.Nil(t, draft.Confidence)
	require.Len(t, draft.Citations, 1)
	assert.Equal(t, 2, draft.Citations[0].SourceNumber)
}

func TestCitationRef_MissingSourceNumberCitesFirstSource(t *testing.T) {
	var draft Draft
	raw := `{"answer":"x","citations":[{"relevance":"direct"},{"source_number":3}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &draft))

	require.Len(t, draft.Citations, 2)
	assert.Equal(t, 1, draft.Citations[0].SourceNumber)
	assert.Equal(t, "direct", draft.Citations[0].Relevance)
	assert.Equal(t, 3, draft.Citations[1].SourceNumber)
}

func TestIndexSnapshot_Len(t *testing.T) {
	snap := &IndexSnapshot{Chunks: make([]Chunk, 3), Vectors: make([][]float32, 3)}
	assert.Equal(t, 3, snap.Len())
}
