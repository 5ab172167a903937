package client

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"textbook-tutor/internal/domain/entity"
)

type GeminiEmbedder struct {
	client *genai.Client
	model  string // e.g., "text-embedding-004"
}

func NewGeminiEmbedder(c *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{
		client: c,
		model:  model,
	}
}

func (e *GeminiEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, convertGeminiError(err)
	}
	if len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("gemini embedding: %w", entity.ErrEmptyResponse)
	}
	return res.Embeddings[0].Values, nil
}

type OpenAIEmbedder struct {
	client *openai.Client
	model  string // e.g., "text-embedding-3-small"
}

func NewOpenAIEmbedder(apiKey, baseURL, model string) (*OpenAIEmbedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai embedding: %w", entity.ErrMissingCredential)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (e *OpenAIEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, convertOpenAIError(err)
	}
	if len(res.Data) == 0 {
		return nil, fmt.Errorf("openai embedding: %w", entity.ErrEmptyResponse)
	}
	return res.Data[0].Embedding, nil
}
