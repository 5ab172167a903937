package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"textbook-tutor/internal/domain/entity"
)

func TestConvertGeminiError(t *testing.T) {
	apiErr := genai.APIError{Code: 429, Message: "Resource has been exhausted (e.g. check quota).", Status: "RESOURCE_EXHAUSTED"}

	for name, in := range map[string]error{
		"value":   fmt.Errorf("generate: %w", apiErr),
		"pointer": fmt.Errorf("generate: %w", &apiErr),
	} {
		t.Run(name, func(t *testing.T) {
			var perr *entity.ProviderError
			require.True(t, errors.As(convertGeminiError(in), &perr))
			assert.Equal(t, "gemini", perr.Provider)
			assert.Equal(t, 429, perr.StatusCode)
			assert.Equal(t, "RESOURCE_EXHAUSTED", perr.Code)
			assert.Contains(t, perr.Message, "quota")
		})
	}
}

func TestConvertGeminiError_Transport(t *testing.T) {
	var perr *entity.ProviderError
	require.True(t, errors.As(convertGeminiError(context.DeadlineExceeded), &perr))
	assert.Zero(t, perr.StatusCode)
	assert.ErrorIs(t, perr, context.DeadlineExceeded)
}

func TestNewGenAIClient_NoCredentials(t *testing.T) {
	_, err := NewGenAIClient(context.Background(), GeminiConfig{})
	assert.ErrorIs(t, err, entity.ErrMissingCredential)
}
