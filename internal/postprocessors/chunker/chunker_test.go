package chunker

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// fillerText returns n sentences of 47 characters each, joined by spaces.
func fillerText(n int) string {
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = fmt.Sprintf("Sentence %02d has some filler words in it to pad.", i)
	}
	return strings.Join(sentences, " ")
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, c.chunkSize)
		}
		if c.overlapWords != DefaultOverlapWords {
			t.Errorf("expected overlapWords %d, got %d", DefaultOverlapWords, c.overlapWords)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		c := New(WithChunkSize(128), WithOverlapWords(3))
		if c.chunkSize != 128 {
			t.Errorf("expected chunkSize 128, got %d", c.chunkSize)
		}
		if c.overlapWords != 3 {
			t.Errorf("expected overlapWords 3, got %d", c.overlapWords)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithChunkSize(0), WithOverlapWords(-1))
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", c.chunkSize)
		}
		if c.overlapWords != DefaultOverlapWords {
			t.Errorf("expected default overlapWords, got %d", c.overlapWords)
		}
	})

	t.Run("zero overlap allowed", func(t *testing.T) {
		c := New(WithOverlapWords(0))
		if c.overlapWords != 0 {
			t.Errorf("expected overlapWords 0, got %d", c.overlapWords)
		}
	})
}

func TestChunker_Name(t *testing.T) {
	if New().Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", New().Name())
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \n\t  \r\n", ""},
		{"null bytes", "a\x00b\x00c", "abc"},
		{"control characters", "he\x01ll\x1fo\x07", "hello"},
		{"collapse whitespace", "one   two\n\nthree\tfour", "one two three four"},
		{"trim", "   padded   ", "padded"},
		{"carriage return between words", "line one\r\nline two", "line one line two"},
		{"unicode kept", "naïve café  日本語", "naïve café 日本語"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "No terminator here", []string{"No terminator here"}},
		{"three kinds", "One. Two! Three? Four", []string{"One.", "Two!", "Three?", "Four"}},
		{"no space after period", "Version 1.2 is out. Done.", []string{"Version 1.2 is out.", "Done."}},
		{"ellipsis", "Wait... what? Yes.", []string{"Wait...", "what?", "Yes."}},
		{"multiple spaces", "A.   B.", []string{"A.", "B."}},
		{"trailing terminator", "End.", []string{"End."}},
		{"empty", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitSentences(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("SplitSentences(%q) = %q, want %q", tc.in, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestChunk_EmptyText(t *testing.T) {
	c := New()
	for _, text := range []string{"", "   ", "\x00\x01\n\t"} {
		if chunks := c.Chunk(text, "doc", "doc.pdf", 1, 0); len(chunks) != 0 {
			t.Errorf("expected no chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c := New(WithChunkSize(100))
	text := "  A short   page.\nWith two sentences.  "

	chunks := c.Chunk(text, "doc-1", "report.pdf", 3, 7)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	chunk := chunks[0]
	if chunk.Text != "A short page. With two sentences." {
		t.Errorf("unexpected text %q", chunk.Text)
	}
	if chunk.Index != 7 {
		t.Errorf("expected index 7, got %d", chunk.Index)
	}
	if chunk.PageNumber != 3 || chunk.DocumentID != "doc-1" || chunk.DocumentName != "report.pdf" {
		t.Errorf("unexpected chunk metadata: %+v", chunk)
	}
	if chunk.ID == "" {
		t.Error("expected chunk ID to be set")
	}
}

func TestChunk_ExactlyChunkSize(t *testing.T) {
	c := New(WithChunkSize(20))
	text := strings.Repeat("x", 20)

	chunks := c.Chunk(text, "doc", "doc.pdf", 1, 0)
	if len(chunks) != 1 || chunks[0].Text != text {
		t.Fatalf("expected the whole text as one chunk, got %+v", chunks)
	}
}

func TestChunk_SplitsOnSentences(t *testing.T) {
	c := New(WithChunkSize(512))
	text := fillerText(21)

	chunks := c.Chunk(text, "doc", "doc.pdf", 2, 4)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if runeLen(chunk.Text) > 512 {
			t.Errorf("chunk %d has %d characters", i, runeLen(chunk.Text))
		}
		if chunk.Index != 4+i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if !strings.HasSuffix(chunk.Text, ".") {
			t.Errorf("chunk %d does not end on a sentence boundary: %q", i, chunk.Text)
		}
	}

	if !strings.HasPrefix(chunks[0].Text, "Sentence 00") {
		t.Errorf("first chunk should start at the first sentence: %q", chunks[0].Text)
	}
	if !strings.HasSuffix(chunks[2].Text, "Sentence 20 has some filler words in it to pad.") {
		t.Errorf("last chunk should end at the last sentence: %q", chunks[2].Text)
	}
}

func TestChunk_OverlapCarriesLastWords(t *testing.T) {
	c := New(WithChunkSize(512), WithOverlapWords(10))
	chunks := c.Chunk(fillerText(21), "doc", "doc.pdf", 1, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		words := strings.Fields(chunks[i-1].Text)
		carried := strings.Join(words[len(words)-10:], " ")
		if !strings.HasPrefix(chunks[i].Text, carried+" ") {
			t.Errorf("chunk %d should start with %q, got %q", i, carried, chunks[i].Text)
		}
	}
}

func TestChunk_OverlapShorterThanLimit(t *testing.T) {
	c := New(WithChunkSize(30), WithOverlapWords(10))
	text := "Tiny one here. Another sentence goes here."

	chunks := c.Chunk(text, "doc", "doc.pdf", 1, 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Text != "Tiny one here." {
		t.Errorf("unexpected first chunk %q", chunks[0].Text)
	}
	// All three words would not fit in front of the 28 character sentence.
	if chunks[1].Text != "Another sentence goes here." && !strings.HasSuffix(chunks[1].Text, " Another sentence goes here.") {
		t.Errorf("unexpected second chunk %q", chunks[1].Text)
	}
	if runeLen(chunks[1].Text) > 30 {
		t.Errorf("second chunk exceeds size: %q", chunks[1].Text)
	}
}

func TestChunk_ZeroOverlap(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlapWords(0))
	chunks := c.Chunk(fillerText(5), "doc", "doc.pdf", 1, 0)

	total := 0
	for _, chunk := range chunks {
		total += len(SplitSentences(chunk.Text))
	}
	if total != 5 {
		t.Errorf("expected every sentence exactly once without overlap, got %d sentences", total)
	}
}

func TestChunk_OversizedSentencePassesThrough(t *testing.T) {
	c := New(WithChunkSize(50))
	long := strings.TrimSpace(strings.Repeat("word ", 30)) + "."
	text := "Short one. " + long + " Tail end."

	chunks := c.Chunk(text, "doc", "doc.pdf", 1, 0)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Text != "Short one." {
		t.Errorf("unexpected first chunk %q", chunks[0].Text)
	}
	if chunks[1].Text != long {
		t.Errorf("oversized sentence should be one unsplit chunk, got %q", chunks[1].Text)
	}
	if !strings.HasSuffix(chunks[2].Text, "Tail end.") || runeLen(chunks[2].Text) > 50 {
		t.Errorf("unexpected last chunk %q", chunks[2].Text)
	}
}

func TestChunk_LengthBoundProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	vocabulary := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta", "iota", "kappa",
		"lambda", "mu", "nu", "xi", "omicron", "pi", "rho", "sigma", "tau", "upsilon", "phi", "chi", "psi", "omega"}
	terminators := []string{".", "!", "?"}

	for _, size := range []int{40, 64, 128, 512} {
		for round := 0; round < 20; round++ {
			var sentences []string
			for s := 0; s < 30; s++ {
				n := 1 + rng.Intn(25)
				words := make([]string, n)
				for w := range words {
					words[w] = vocabulary[rng.Intn(len(vocabulary))]
				}
				sentences = append(sentences, strings.Join(words, " ")+terminators[rng.Intn(len(terminators))])
			}
			text := strings.Join(sentences, " ")

			c := New(WithChunkSize(size))
			chunks := c.Chunk(text, "doc", "doc.pdf", 1, 0)

			for i, chunk := range chunks {
				if chunk.Index != i {
					t.Fatalf("size %d: chunk %d has index %d", size, i, chunk.Index)
				}
				if chunk.Text == "" {
					t.Fatalf("size %d: chunk %d is empty", size, i)
				}
				if runeLen(chunk.Text) <= size {
					continue
				}
				// Only a lone oversized sentence may exceed the bound.
				if got := SplitSentences(chunk.Text); len(got) != 1 {
					t.Fatalf("size %d: chunk %d has %d characters and %d sentences", size, i, runeLen(chunk.Text), len(got))
				}
			}
		}
	}
}

func TestChunk_UniqueIDs(t *testing.T) {
	c := New(WithChunkSize(100))
	chunks := c.Chunk(fillerText(20), "doc", "doc.pdf", 1, 0)

	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if seen[chunk.ID] {
			t.Fatalf("duplicate chunk ID %s", chunk.ID)
		}
		seen[chunk.ID] = true
	}
}

func TestChunkPages_ContinuousIndexes(t *testing.T) {
	c := New(WithChunkSize(512), WithOverlapWords(10))
	pageOne := strings.Repeat("a", 99) + "."
	pageTwo := fillerText(21)

	pages := []domain.Page{
		{Number: 1, Text: pageOne},
		{Number: 2, Text: "   \n\x00 "},
		{Number: 3, Text: pageTwo},
	}

	chunks := c.ChunkPages("doc-1", "two.pdf", pages)
	if len(chunks) < 3 || len(chunks) > 4 {
		t.Fatalf("expected 1 chunk for the short page and 2-3 for the long one, got %d", len(chunks))
	}

	if chunks[0].PageNumber != 1 || chunks[0].Text != pageOne {
		t.Errorf("short page should be a single chunk, got %+v", chunks[0])
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if i > 0 && chunk.PageNumber != 3 {
			t.Errorf("chunk %d should come from page 3, got page %d", i, chunk.PageNumber)
		}
		if chunk.DocumentID != "doc-1" {
			t.Errorf("chunk %d has document ID %q", i, chunk.DocumentID)
		}
	}

	if pages := domain.PageCountOf(chunks); pages != 3 {
		t.Errorf("expected page count 3, got %d", pages)
	}
}
