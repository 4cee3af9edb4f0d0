// Package batching wraps an embedding provider with the input and output
// rules every provider must obey: bounded input, sub-batching, unit-norm
// output and dimension checks. It can also pace provider calls and cache
// single-text embeddings.
package batching

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

const (
	// MaxTextLength is the longest input sent to the provider, in runes.
	MaxTextLength = 25000

	// BatchSize is the largest number of texts per provider call.
	BatchSize = 100
)

// Option configures the service.
type Option func(*Service)

// WithRateLimit paces provider calls to rps requests per second.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64) Option {
	return func(s *Service) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithCache consults cache before embedding a single text.
func WithCache(cache driven.EmbeddingCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithBatchSize overrides BatchSize.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// Service is a driven.EmbeddingService decorator.
type Service struct {
	inner     driven.EmbeddingService
	limiter   *rate.Limiter
	cache     driven.EmbeddingCache
	batchSize int
}

// New wraps inner.
func New(inner driven.EmbeddingService, opts ...Option) *Service {
	s := &Service{
		inner:     inner,
		batchSize: BatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed embeds one text, using the cache when configured. Cache failures
// are logged and otherwise ignored.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	model := s.inner.ModelName()

	if s.cache != nil {
		vector, ok, err := s.cache.Get(ctx, model, text)
		switch {
		case err != nil:
			logger.Warn("Embedding cache read failed: %v", err)
		case ok && len(vector) == s.Dimensions():
			logger.Debug("Embedding cache hit")
			return vector, nil
		}
	}

	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, model, text, vectors[0]); err != nil {
			logger.Warn("Embedding cache write failed: %v", err)
		}
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in order. Blank texts map to the zero vector and
// are never sent to the provider.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	dims := s.Dimensions()
	out := make([][]float32, len(texts))

	// Positions of the texts that need a provider call.
	var pending []int
	var inputs []string
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i] = make([]float32, dims)
			continue
		}
		pending = append(pending, i)
		inputs = append(inputs, truncate(text, MaxTextLength))
	}

	batches := (len(inputs) + s.batchSize - 1) / s.batchSize
	for b := 0; b < batches; b++ {
		start := b * s.batchSize
		end := min(start+s.batchSize, len(inputs))

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("embedding rate limit: %w", err)
			}
		}

		logger.Debug("Embedding batch %d/%d (%d texts)", b+1, batches, end-start)

		vectors, err := s.inner.EmbedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrProvider, err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts",
				domain.ErrProvider, len(vectors), end-start)
		}

		for j, v := range vectors {
			if len(v) != dims {
				return nil, fmt.Errorf("%w: provider returned a %d-dimensional vector, expected %d",
					domain.ErrProvider, len(v), dims)
			}
			out[pending[start+j]] = Normalize(v)
		}
	}

	return out, nil
}

// Dimensions returns the wrapped provider's vector size.
func (s *Service) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped provider's model.
func (s *Service) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the wrapped provider.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.inner.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// Close releases the provider and the cache.
func (s *Service) Close() error {
	err := s.inner.Close()
	if s.cache != nil {
		if cerr := s.cache.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Normalize returns v scaled to unit length. A zero vector is returned as is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}
