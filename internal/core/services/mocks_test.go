package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

const testDims = 32

// --- Mock implementations ---

// hashEmbedder implements driven.EmbeddingService with a bag-of-words hash.
// Identical texts map to identical unit vectors, so a chunk's own text is
// always its best match.
type hashEmbedder struct {
	dims  int
	err   error
	calls atomic.Int32
	texts atomic.Int32
}

func newHashEmbedder() *hashEmbedder {
	return &hashEmbedder{dims: testDims}
}

func (e *hashEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,!?")))
		v[h.Sum32()%uint32(e.dims)]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	e.texts.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	e.texts.Add(int32(len(texts)))
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *hashEmbedder) Dimensions() int { return e.dims }
func (e *hashEmbedder) ModelName() string { return "hash-embed" }
func (e *hashEmbedder) Ping(_ context.Context) error { return nil }
func (e *hashEmbedder) Close() error { return nil }

// shortEmbedder returns one vector too few.
type shortEmbedder struct{ hashEmbedder }

func (e *shortEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := e.hashEmbedder.EmbedBatch(ctx, texts)
	if err != nil || len(out) == 0 {
		return out, err
	}
	return out[:len(out)-1], nil
}

// mockLLM implements driven.LLMService.
type mockLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
	calls    int
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "Answer from the sources. Reply in JSON.",
		driven.PromptAnswerUser:   "Question: {{question}}\n\nSources:\n{{context}}",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %s: %w", name, domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockExtractor implements driven.PageExtractor.
type mockExtractor struct {
	pages []domain.Page
	err   error
}

func (m *mockExtractor) ExtractPages(_ context.Context, _ []byte) ([]domain.Page, error) {
	return m.pages, m.err
}

// failingPersistence implements driven.IndexPersistence and fails writes.
type failingPersistence struct{}

var errDiskFull = errors.New("disk full")

func (failingPersistence) Append(context.Context, int, domain.Document, []domain.Chunk, [][]float32) error {
	return errDiskFull
}

func (failingPersistence) Replace(context.Context, *domain.IndexSnapshot) error {
	return errDiskFull
}

func (failingPersistence) Load(context.Context) (*domain.IndexSnapshot, error) {
	return &domain.IndexSnapshot{}, nil
}

// failingUploads implements driven.UploadStore and fails to save.
type failingUploads struct{}

func (failingUploads) Save(string, []byte) (string, error) { return "", errDiskFull }
func (failingUploads) Remove(string) error { return nil }
func (failingUploads) Path(string) (string, error) { return "", domain.ErrNotFound }

// --- Fixtures ---

// makeChunks builds one chunk per text for a document, texts[i] on page i+1.
func makeChunks(documentID string, texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:           fmt.Sprintf("%s-%d", documentID, i),
			DocumentID:   documentID,
			DocumentName: documentID + ".pdf",
			PageNumber:   i + 1,
			Index:        i,
			Text:         text,
		}
	}
	return chunks
}

// makeCandidates builds n candidates with descending scores.
func makeCandidates(n int) []domain.Candidate {
	candidates := make([]domain.Candidate, n)
	for i := range candidates {
		candidates[i] = domain.Candidate{
			Chunk: domain.Chunk{
				ID:           fmt.Sprintf("c-%d", i),
				DocumentID:   "doc",
				DocumentName: "report.pdf",
				PageNumber:   i + 1,
				Index:        i,
				Text:         fmt.Sprintf("Passage number %d about revenue.", i+1),
			},
			Score: 0.9 - float32(i)*0.1,
		}
	}
	return candidates
}

func nan() float64 { return math.NaN() }

// chunksOf returns a document's chunks in index order.
func chunksOf(store *Store, documentID string) []domain.Chunk {
	var chunks []domain.Chunk
	for _, c := range store.Snapshot().Chunks {
		if c.DocumentID == documentID {
			chunks = append(chunks, c)
		}
	}
	return chunks
}
