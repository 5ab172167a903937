package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"textbook-tutor/internal/domain/entity"
	"textbook-tutor/internal/domain/repository"
)

// DefaultTargetLanguage is used when a translation request names none.
const DefaultTargetLanguage = "Urdu"

// TransformPipeline personalizes or translates a whole document by fanning
// its chunks out to the provider. Each chunk is prompted on its own, so
// cross-chunk coherence is not guaranteed.
type TransformPipeline struct {
	provider   repository.ProviderClient
	fanout     *FanoutExecutor
	translator AgentConfig
	adaptor    AgentConfig
	logger     zerolog.Logger
}

func NewTransformPipeline(provider repository.ProviderClient, fanout *FanoutExecutor, translator, adaptor AgentConfig, logger zerolog.Logger) *TransformPipeline {
	return &TransformPipeline{
		provider:   provider,
		fanout:     fanout,
		translator: translator,
		adaptor:    adaptor,
		logger:     logger.With().Str("component", "transform").Logger(),
	}
}

func (p *TransformPipeline) Translate(ctx context.Context, content, targetLanguage string) (string, error) {
	if strings.TrimSpace(targetLanguage) == "" {
		targetLanguage = DefaultTargetLanguage
	}
	return p.run(ctx, content, "Translation", p.translator, func(chunk string) string {
		return translationPrompt(chunk, targetLanguage)
	})
}

func (p *TransformPipeline) Personalize(ctx context.Context, content string, profile entity.UserProfile) (string, error) {
	background := profile.Descriptor()
	return p.run(ctx, content, "Personalization", p.adaptor, func(chunk string) string {
		return personalizationPrompt(chunk, background)
	})
}

// run returns an error only when no provider exists. Chunk failures are
// written in-line as placeholders.
func (p *TransformPipeline) run(ctx context.Context, content, label string, agent AgentConfig, prompt func(string) string) (string, error) {
	if p.provider == nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), entity.ErrMissingCredential)
	}

	chunks := SplitDocument(content)
	if len(chunks) == 0 {
		return "", nil
	}

	p.logger.Info().Str("label", label).Str("agent", agent.Name).Int("chunks", len(chunks)).Msg("transforming document")

	outcomes := p.fanout.Run(ctx, chunks, label, func(ctx context.Context, chunk entity.DocumentChunk) (string, error) {
		result, err := p.provider.Invoke(ctx, agent.Request(prompt(chunk.Text)))
		if err != nil {
			_, msg := Classify(err)
			return "", errors.New(msg)
		}
		return ExtractAnswer(result), nil
	})

	return JoinOutcomes(outcomes), nil
}

func translationPrompt(chunk, language string) string {
	return fmt.Sprintf(`
Translate the following English text into %[1]s.
Do not add any extra commentary, just the translation.

English Text:
---
%[2]s
---

%[1]s Translation:
`, language, chunk)
}

func personalizationPrompt(chunk, background string) string {
	return fmt.Sprintf(`
Adapt the following chapter section for a user with the following background:
%s

Original Section: %s

Personalized Section:
`, background, chunk)
}
