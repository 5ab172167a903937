// Package bootstrap turns configuration into the process-wide provider,
// embedding and vector-search handles. Each is built once at start-up and
// passed by reference into the use cases.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"textbook-tutor/internal/adapter/client"
	"textbook-tutor/internal/adapter/store"
	"textbook-tutor/internal/config"
	"textbook-tutor/internal/domain/entity"
	"textbook-tutor/internal/domain/repository"
	"textbook-tutor/internal/usecase"
)

// Provider builds the resilient LLM provider. It returns ErrMissingCredential
// when the selected provider has no key; callers then run without a provider.
func Provider(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.ProviderClient, error) {
	var primary, fallback repository.ProviderClient

	switch cfg.LLMProvider {
	case "gemini":
		gc, err := genAI(ctx, cfg)
		if err != nil {
			return nil, err
		}
		primary = client.NewGeminiClientFromClient(gc, cfg.GeminiAPIKey, log)
	default:
		oc, err := client.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, log)
		if err != nil {
			return nil, err
		}
		primary = oc
		// Gemini is Plan B when it has credentials of its own.
		if cfg.FallbackModel != "" {
			if gc, err := genAI(ctx, cfg); err == nil {
				fallback = client.NewGeminiClientFromClient(gc, cfg.GeminiAPIKey, log)
			} else if !errors.Is(err, entity.ErrMissingCredential) {
				log.Warn().Err(err).Msg("fallback provider unavailable")
			}
		}
	}

	return usecase.NewResilientProvider(primary, fallback, usecase.ResilienceOptions{
		MaxRetries:    cfg.ProviderMaxRetries,
		Timeout:       cfg.ProviderTimeout,
		FallbackModel: cfg.FallbackModel,
		RPS:           cfg.ProviderRPS,
	}, log), nil
}

// Embedder returns nil without error when embeddings are disabled.
func Embedder(ctx context.Context, cfg *config.Config) (repository.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		emb, err := client.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		return emb, nil
	case "gemini":
		gc, err := genAI(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client.NewGeminiEmbedder(gc, cfg.EmbeddingModel), nil
	default:
		return nil, nil
	}
}

// VectorStore returns nil without error when Qdrant is not configured.
func VectorStore(cfg *config.Config, log zerolog.Logger) (*store.QdrantStore, error) {
	if !cfg.QdrantConfigured() {
		return nil, nil
	}
	qc, err := store.NewQdrantClient(store.QdrantOptions{
		URL:    cfg.QdrantURL,
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	return store.NewQdrantStore(qc, cfg.QdrantCollection, log), nil
}

func genAI(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	return client.NewGenAIClient(ctx, client.GeminiConfig{
		APIKey:   cfg.GeminiAPIKey,
		Project:  cfg.GoogleProject,
		Location: cfg.GoogleLocation,
	})
}
