package driven

import "github.com/custodia-labs/insight/internal/core/domain"

// AIConfigValidator contacts the providers named by settings. Settings are
// checked before 'insight settings embedding|llm' reports success.
type AIConfigValidator interface {
	// ValidateEmbedding also checks that the returned vector size matches
	// the configured dimensions.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	ValidateLLM(config *domain.LLMSettings) error
}
