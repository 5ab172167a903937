package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"textbook-tutor/internal/config"
	"textbook-tutor/internal/domain/entity"
)

const providerGemini = "gemini"

type GeminiConfig struct {
	APIKey   string // Gemini API backend
	Project  string // Vertex AI backend when APIKey is empty
	Location string
}

// NewGenAIClient builds the shared SDK client used by GeminiClient and GeminiEmbedder.
func NewGenAIClient(ctx context.Context, cfg GeminiConfig) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.APIKey == "" {
		if cfg.Project == "" {
			return nil, fmt.Errorf("gemini: %w", entity.ErrMissingCredential)
		}
		cc = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	}
	return genai.NewClient(ctx, cc)
}

type GeminiClient struct {
	client     *genai.Client
	keyPreview string
	logger     zerolog.Logger
}

func NewGeminiClientFromClient(c *genai.Client, apiKey string, logger zerolog.Logger) *GeminiClient {
	preview := config.KeyPreview(apiKey)
	if preview == "" {
		preview = "adc"
	}
	return &GeminiClient{
		client:     c,
		keyPreview: preview,
		logger:     logger.With().Str("component", "geminiClient").Logger(),
	}
}

func (g *GeminiClient) Invoke(ctx context.Context, req entity.GenerationRequest) (entity.GenerationResult, error) {
	g.logger.Info().
		Str("agent", req.AgentName).
		Str("model", req.ModelID).
		Str("key_preview", g.keyPreview).
		Int("input_len", len(req.Input)).
		Msg("invoking LLM provider")

	var cfg *genai.GenerateContentConfig
	if req.Instructions != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.Instructions, genai.RoleUser),
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, req.ModelID, genai.Text(req.Input), cfg)
	if err != nil {
		return nil, convertGeminiError(err)
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: %w", entity.ErrEmptyResponse)
	}

	out := &entity.AgentOutput{
		FinalOutput: result.Text(),
		Model:       req.ModelID,
	}
	if result.UsageMetadata != nil {
		out.TokenCount = int(result.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

func convertGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return geminiProviderError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return geminiProviderError(*apiErrPtr, err)
	}
	return &entity.ProviderError{Provider: providerGemini, Message: err.Error(), Err: err}
}

func geminiProviderError(apiErr genai.APIError, err error) error {
	return &entity.ProviderError{
		Provider:   providerGemini,
		StatusCode: apiErr.Code,
		Code:       apiErr.Status,
		Message:    apiErr.Message,
		Err:        err,
	}
}
