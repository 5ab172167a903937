package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"textbook-tutor/internal/config"
	"textbook-tutor/internal/domain/entity"
)

const providerOpenAI = "openai"

// OpenAIClient runs agent configurations as chat completions:
// instructions become the system message, the input the user message.
type OpenAIClient struct {
	client     *openai.Client
	keyPreview string
	logger     zerolog.Logger
}

// NewOpenAIClient fails fast when apiKey is empty. baseURL overrides the
// default endpoint (proxies, tests).
func NewOpenAIClient(apiKey, baseURL string, logger zerolog.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai: %w", entity.ErrMissingCredential)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(cfg),
		keyPreview: config.KeyPreview(apiKey),
		logger:     logger.With().Str("component", "openaiClient").Logger(),
	}, nil
}

func (c *OpenAIClient) Invoke(ctx context.Context, req entity.GenerationRequest) (entity.GenerationResult, error) {
	c.logger.Info().
		Str("agent", req.AgentName).
		Str("model", req.ModelID).
		Str("key_preview", c.keyPreview).
		Int("input_len", len(req.Input)).
		Msg("invoking LLM provider")

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.Instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Input,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    req.ModelID,
		Messages: messages,
	})
	if err != nil {
		return nil, convertOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: %w", entity.ErrEmptyResponse)
	}

	return &entity.AgentOutput{
		FinalOutput: resp.Choices[0].Message.Content,
		Model:       resp.Model,
		TokenCount:  resp.Usage.TotalTokens,
	}, nil
}

// convertOpenAIError keeps the HTTP status and error code so the failure
// can be classified downstream.
func convertOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		} else if apiErr.Type != "" {
			code = apiErr.Type
		}
		return &entity.ProviderError{
			Provider:   providerOpenAI,
			StatusCode: apiErr.HTTPStatusCode,
			Code:       code,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &entity.ProviderError{
			Provider:   providerOpenAI,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
			Err:        err,
		}
	}

	return &entity.ProviderError{Provider: providerOpenAI, Message: err.Error(), Err: err}
}
