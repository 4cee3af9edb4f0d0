package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

const (
	excerptLength     = 200
	fallbackCitations = 3
	defaultConfidence = 0.5
	noAnswer          = "Unable to generate an answer."
)

// AssemblerConfig configures answer generation.
type AssemblerConfig struct {
	// MaxTokens bounds the generated reply.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// AnswerAssembler asks the generator for a draft answer over numbered
// sources and repairs the draft into an Answer with trustworthy citations.
type AnswerAssembler struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	cfg     AssemblerConfig
}

// NewAnswerAssembler creates an assembler. Zero config values use the
// domain defaults.
func NewAnswerAssembler(llm driven.LLMService, prompts driven.PromptStore, cfg AssemblerConfig) (*AnswerAssembler, error) {
	if llm == nil {
		return nil, fmt.Errorf("assembler: %w", domain.ErrLLMUnavailable)
	}
	if prompts == nil {
		return nil, errors.New("assembler: prompt store is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = domain.DefaultMaxTokens
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = domain.DefaultTemperature
	}

	return &AnswerAssembler{
		llm:     llm,
		prompts: prompts,
		cfg:     cfg,
	}, nil
}

// Assemble generates an answer to question from ranked candidates.
// A generator failure or a reply that is not a JSON object fails the whole
// call with domain.ErrProvider; nothing is retried.
func (a *AnswerAssembler) Assemble(ctx context.Context, question string, candidates []domain.Candidate) (*domain.Answer, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoMatches
	}

	system, err := a.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptAnswerSystem, err)
	}
	userTemplate, err := a.prompts.Load(driven.PromptAnswerUser)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptAnswerUser, err)
	}

	user := strings.NewReplacer(
		"{{question}}", question,
		"{{context}}", BuildContext(candidates),
	).Replace(userTemplate)

	logger.Debug("Generating answer from %d sources with %s", len(candidates), a.llm.ModelName())

	reply, err := a.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: user},
	}, driven.ChatOptions{
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		JSON:        true,
	})
	if err != nil {
		return nil, providerError("generate answer", err)
	}

	draft, err := ParseDraft(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProvider, err)
	}

	return Repair(draft, candidates), nil
}

// BuildContext renders candidates as numbered sources, starting at 1.
func BuildContext(candidates []domain.Candidate) string {
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = fmt.Sprintf("[Source %d] (Document: %s, Page: %d)\n%s\n",
			i+1, c.Chunk.DocumentName, c.Chunk.PageNumber, c.Chunk.Text)
	}
	return strings.Join(parts, "\n---\n")
}

// ParseDraft decodes a generator reply. The reply must be a JSON object,
// optionally wrapped in a markdown code fence.
func ParseDraft(reply string) (*domain.Draft, error) {
	body := strings.TrimSpace(reply)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}

	if !strings.HasPrefix(body, "{") {
		return nil, fmt.Errorf("generator reply is not a JSON object: %q", truncate(body, 80))
	}

	var draft domain.Draft
	if err := json.Unmarshal([]byte(body), &draft); err != nil {
		return nil, fmt.Errorf("decode generator reply: %w", err)
	}
	return &draft, nil
}

// Repair turns an untrusted draft into an Answer:
//   - confidence is clamped into [0, 1], defaulting to 0.5 when absent
//   - citations pointing outside the candidates are dropped
//   - with no valid citation left, the top three candidates are cited
//   - excerpts and scores always come from the candidates themselves
func Repair(draft *domain.Draft, candidates []domain.Candidate) *domain.Answer {
	confidence := defaultConfidence
	if draft.Confidence != nil {
		confidence = clampConfidence(*draft.Confidence)
	}

	answer := strings.TrimSpace(draft.Answer)
	if answer == "" {
		answer = noAnswer
	}

	citations := make([]domain.Citation, 0, len(draft.Citations))
	for _, ref := range draft.Citations {
		i := ref.SourceNumber - 1
		if i < 0 || i >= len(candidates) {
			logger.Debug("Dropping citation of source %d (have %d)", ref.SourceNumber, len(candidates))
			continue
		}
		citations = append(citations, citationFor(candidates[i]))
	}

	if len(citations) == 0 {
		for _, c := range candidates[:min(fallbackCitations, len(candidates))] {
			citations = append(citations, citationFor(c))
		}
	}

	return &domain.Answer{
		Answer:     answer,
		Confidence: confidence,
		Citations:  citations,
	}
}

func clampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

func citationFor(c domain.Candidate) domain.Citation {
	return domain.Citation{
		DocumentName:   c.Chunk.DocumentName,
		PageNumber:     c.Chunk.PageNumber,
		TextExcerpt:    Excerpt(c.Chunk.Text),
		RelevanceScore: c.Score,
	}
}

// Excerpt returns the first 200 characters of text, with "..." appended
// when anything was cut.
func Excerpt(text string) string {
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	return string([]rune(text)[:excerptLength]) + "..."
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
