package repository

import (
	"context"

	"textbook-tutor/internal/domain/entity"
)

// ProviderClient invokes an LLM agent configuration with a single textual input.
type ProviderClient interface {
	Invoke(ctx context.Context, req entity.GenerationRequest) (entity.GenerationResult, error)
}

type VectorStore interface {
	Search(ctx context.Context, vector []float32, limit int) ([]entity.Passage, error)
}

type PassageWriter interface {
	Upsert(ctx context.Context, passages []entity.Passage, vectors [][]float32) error
}

type CollectionHealthChecker interface {
	Health(ctx context.Context) (entity.CollectionHealth, error)
}

type TokenLimiter interface {
	CheckLimit(ctx context.Context, userID string) (bool, error)
	Increment(ctx context.Context, userID string, tokens int) error
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}
