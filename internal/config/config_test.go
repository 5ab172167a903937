package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noEnvFile = "testdata/does-not-exist.env"

// clearEnv blanks keys the host may already define; blank values read as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LLM_PROVIDER", "CHAT_MODEL", "QDRANT_URL", "QDRANT_HOST",
		"QDRANT_COLLECTION_NAME", "RETRIEVAL_LIMIT", "FANOUT_MAX_CONCURRENCY",
		"CHUNK_TIMEOUT", "PROVIDER_TIMEOUT", "CORS_ORIGINS", "EMBEDDING_PROVIDER",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, loaded, err := Load(noEnvFile)
	require.NoError(t, err)

	assert.False(t, loaded)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, "textbook_chunks", cfg.QdrantCollection)
	assert.Equal(t, 3, cfg.RetrievalLimit)
	assert.Equal(t, 32, cfg.FanoutMaxConcurrency)
	assert.Equal(t, time.Duration(0), cfg.ChunkTimeout)
	assert.Equal(t, 60*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.QdrantConfigured())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", " AIzaSyExampleKey0000 ")
	t.Setenv("CHUNK_TIMEOUT", "45s")
	t.Setenv("FANOUT_MAX_CONCURRENCY", "8")
	t.Setenv("QDRANT_URL", "https://cluster.cloud.qdrant.io:6334")
	t.Setenv("CORS_ORIGINS", "https://book.example.com, ,http://localhost:3000")

	cfg, _, err := Load(noEnvFile)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "AIzaSyExampleKey0000", cfg.ProviderAPIKey())
	assert.Equal(t, 45*time.Second, cfg.ChunkTimeout)
	assert.Equal(t, 8, cfg.FanoutMaxConcurrency)
	assert.True(t, cfg.QdrantConfigured())
	assert.Equal(t, []string{"https://book.example.com", "http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RETRIEVAL_LIMIT", "three")

	cfg, _, err := Load(noEnvFile)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RetrievalLimit)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown provider":  {"LLM_PROVIDER", "anthropic"},
		"bad embedding":     {"EMBEDDING_PROVIDER", "cohere"},
		"retrieval too big": {"RETRIEVAL_LIMIT", "500"},
		"port not numeric":  {"PORT", "http"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, _, err := Load(noEnvFile)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestKeyPreview(t *testing.T) {
	assert.Equal(t, "", KeyPreview(""))
	assert.Equal(t, "***", KeyPreview("short-key"))
	assert.Equal(t, "sk-proj-...wxyz", KeyPreview("sk-proj-abcdefghijklmnopwxyz"))
}
