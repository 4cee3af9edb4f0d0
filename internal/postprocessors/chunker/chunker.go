// Package chunker splits page text into bounded, overlapping chunks.
//
// Text is cut on sentence boundaries. When a chunk is flushed, its last few
// words are carried into the next one so that a passage spanning the cut is
// still retrievable from either side. Lengths are measured in runes.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of characters per chunk.
const DefaultChunkSize = 512

// DefaultOverlapWords is the default number of words carried between chunks.
const DefaultOverlapWords = 10

// Chunker splits sanitized page text into chunks.
type Chunker struct {
	chunkSize    int
	overlapWords int
	newID        func() string
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlapWords sets how many trailing words of a flushed chunk seed the next.
func WithOverlapWords(words int) Option {
	return func(c *Chunker) {
		if words >= 0 {
			c.overlapWords = words
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize:    DefaultChunkSize,
		overlapWords: DefaultOverlapWords,
		newID:        func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return "chunker"
}

// ChunkPages chunks every page of a document in order. Chunk indexes run
// continuously across pages starting at zero.
func (c *Chunker) ChunkPages(documentID, documentName string, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, page := range pages {
		chunks = append(chunks, c.Chunk(page.Text, documentID, documentName, page.Number, len(chunks))...)
	}
	return chunks
}

// Chunk splits one page of text into chunks numbered from startIndex.
//
// Text that fits in a single chunk is returned whole. Otherwise sentences are
// packed greedily. A sentence longer than the chunk size is never split and
// becomes one oversized chunk on its own.
func (c *Chunker) Chunk(text, documentID, documentName string, pageNumber, startIndex int) []domain.Chunk {
	text = Sanitize(text)
	if text == "" {
		return nil
	}

	newChunk := func(body string, index int) domain.Chunk {
		return domain.Chunk{
			ID:           c.newID(),
			DocumentID:   documentID,
			DocumentName: documentName,
			PageNumber:   pageNumber,
			Index:        index,
			Text:         body,
		}
	}

	if utf8.RuneCountInString(text) <= c.chunkSize {
		return []domain.Chunk{newChunk(text, startIndex)}
	}

	var (
		chunks []domain.Chunk
		buf    strings.Builder
		bufLen int // runes in buf, including the trailing space
		index  = startIndex
	)

	for _, sentence := range SplitSentences(text) {
		sentenceLen := utf8.RuneCountInString(sentence)
		if bufLen+sentenceLen+1 <= c.chunkSize {
			buf.WriteString(sentence)
			buf.WriteByte(' ')
			bufLen += sentenceLen + 1
			continue
		}

		flushed := strings.TrimSpace(buf.String())
		if flushed != "" {
			chunks = append(chunks, newChunk(flushed, index))
			index++
		}

		buf.Reset()
		bufLen = 0
		if seed := c.overlap(flushed, sentenceLen); seed != "" {
			buf.WriteString(seed)
			buf.WriteByte(' ')
			bufLen = utf8.RuneCountInString(seed) + 1
		}
		buf.WriteString(sentence)
		buf.WriteByte(' ')
		bufLen += sentenceLen + 1
	}

	if rest := strings.TrimSpace(buf.String()); rest != "" {
		chunks = append(chunks, newChunk(rest, index))
	}

	return chunks
}

// overlap returns the words carried from a flushed chunk into the next one:
// the last overlapWords words, shortened from the front until they fit in
// front of a sentence of nextLen runes.
func (c *Chunker) overlap(flushed string, nextLen int) string {
	if c.overlapWords == 0 || flushed == "" {
		return ""
	}

	words := strings.Fields(flushed)
	if len(words) > c.overlapWords {
		words = words[len(words)-c.overlapWords:]
	}

	budget := c.chunkSize - nextLen - 1
	size := -1
	for _, w := range words {
		size += utf8.RuneCountInString(w) + 1
	}
	for len(words) > 0 && size > budget {
		size -= utf8.RuneCountInString(words[0]) + 1
		words = words[1:]
	}

	return strings.Join(words, " ")
}

// Sanitize drops control characters other than newline and tab, collapses
// whitespace runs to a single space and trims the result.
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		if r < ' ' && r != '\n' && r != '\t' {
			continue
		}
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}

	return b.String()
}

// SplitSentences splits text after '.', '!' or '?' when followed by
// whitespace. Sentences are trimmed and empty ones dropped.
func SplitSentences(text string) []string {
	var sentences []string

	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
		default:
			continue
		}

		r, size := utf8.DecodeRuneInString(text[i+1:])
		if size == 0 || !unicode.IsSpace(r) {
			continue
		}

		emit(text[start : i+1])

		j := i + 1
		for j < len(text) {
			r, size = utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			j += size
		}
		start = j
		i = j - 1
	}
	emit(text[start:])

	return sentences
}
