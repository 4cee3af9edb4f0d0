package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestNewConfigValidator_Timeout(t *testing.T) {
	assert.Equal(t, pingTimeout, NewConfigValidator().timeout)
	assert.Equal(t, time.Second, NewConfigValidator(WithTimeout(time.Second)).timeout)
	assert.Equal(t, pingTimeout, NewConfigValidator(WithTimeout(0)).timeout)
}

func TestConfigValidator_UnconfiguredIsNoop(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Model: "test-model"}))
	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Model: "test-model"}))
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	server := newOllamaServer(t)
	settings := ollamaSettings(server.URL)

	assert.NoError(t, NewConfigValidator().ValidateEmbedding(&settings.Embedding))
}

func TestConfigValidator_ValidateEmbedding_DimensionMismatch(t *testing.T) {
	server := newOllamaServer(t)
	settings := ollamaSettings(server.URL)
	settings.Embedding.Dimensions = 768

	err := NewConfigValidator().ValidateEmbedding(&settings.Embedding)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "returns 3 dimensions, settings say 768")
}

func TestConfigValidator_ValidateEmbedding_Unreachable(t *testing.T) {
	settings := ollamaSettings("http://127.0.0.1:1")

	err := NewConfigValidator(WithTimeout(time.Second)).ValidateEmbedding(&settings.Embedding)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	server := newOllamaServer(t)
	settings := ollamaSettings(server.URL)
	v := NewConfigValidator(WithTimeout(time.Second))

	assert.NoError(t, v.ValidateLLM(&settings.LLM))

	settings.LLM.BaseURL = "http://127.0.0.1:1"
	assert.ErrorIs(t, v.ValidateLLM(&settings.LLM), domain.ErrLLMUnavailable)
}

func TestConfigValidator_UnsupportedProvider(t *testing.T) {
	err := NewConfigValidator().ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "sk-ant",
	})

	// Anthropic is not an embedding provider, so the settings count as unconfigured.
	assert.NoError(t, err)
}
