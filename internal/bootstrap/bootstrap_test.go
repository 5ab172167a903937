package bootstrap

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textbook-tutor/internal/config"
	"textbook-tutor/internal/domain/entity"
	"textbook-tutor/internal/usecase"
)

func TestProvider_MissingKey(t *testing.T) {
	cfg := &config.Config{LLMProvider: "openai"}

	p, err := Provider(context.Background(), cfg, zerolog.Nop())
	assert.Nil(t, p)
	assert.ErrorIs(t, err, entity.ErrMissingCredential)
}

func TestProvider_OpenAI(t *testing.T) {
	cfg := &config.Config{LLMProvider: "openai", OpenAIAPIKey: "sk-test-key-123456", ProviderMaxRetries: 1}

	p, err := Provider(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &usecase.ResilientProvider{}, p)
}

func TestEmbedder_Disabled(t *testing.T) {
	emb, err := Embedder(context.Background(), &config.Config{EmbeddingProvider: "none"})
	require.NoError(t, err)
	assert.Nil(t, emb)
}

func TestEmbedder_OpenAIWithoutKey(t *testing.T) {
	emb, err := Embedder(context.Background(), &config.Config{EmbeddingProvider: "openai"})
	assert.Nil(t, emb)
	assert.ErrorIs(t, err, entity.ErrMissingCredential)
}

func TestVectorStore_NotConfigured(t *testing.T) {
	vs, err := VectorStore(&config.Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, vs)
}
