package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"textbook-tutor/internal/domain/entity"
	"textbook-tutor/internal/domain/repository"
)

// Orchestrator answers one chat query. It never returns an error: every
// failure becomes a well-formed ChatResult with SearchUsed "error".
type Orchestrator struct {
	provider       repository.ProviderClient
	embedder       repository.Embedder
	vectorStore    repository.VectorStore
	agent          AgentConfig
	retrievalLimit int
	logger         zerolog.Logger
}

// NewOrchestrator wires the chat use case. provider may be nil when no
// credential is configured; embedder and vs may be nil to disable retrieval.
func NewOrchestrator(provider repository.ProviderClient, emb repository.Embedder, vs repository.VectorStore, agent AgentConfig, retrievalLimit int, logger zerolog.Logger) *Orchestrator {
	if retrievalLimit <= 0 {
		retrievalLimit = 3
	}
	return &Orchestrator{
		provider:       provider,
		embedder:       emb,
		vectorStore:    vs,
		agent:          agent,
		retrievalLimit: retrievalLimit,
		logger:         logger.With().Str("component", "orchestrator").Logger(),
	}
}

func (u *Orchestrator) RetrievalEnabled() bool {
	return u.embedder != nil && u.vectorStore != nil
}

func (u *Orchestrator) Execute(ctx context.Context, req entity.ChatRequest) *entity.ChatResult {
	// 1. Without a provider there is nothing to ask
	if u.provider == nil {
		u.logger.Warn().Msg("no LLM provider configured")
		return u.failed(req, entity.CategoryConfiguration, entity.CategoryConfiguration.Message())
	}

	// 2. Optional retrieval; failures degrade to direct mode
	passages := u.retrieve(ctx, req.Query)
	searchUsed := entity.SearchDirectLLM
	if len(passages) > 0 {
		searchUsed = entity.SearchRAG
	}

	// 3. Build the prompt
	prompt := AssemblePrompt(req.History, req.Query, buildGrounding(req.SelectedText, passages))

	// 4. Call the provider
	u.logger.Debug().Int("history", len(req.History)).Int("passages", len(passages)).Msg("invoking provider")
	result, err := u.provider.Invoke(ctx, u.agent.Request(prompt))
	if err != nil {
		category, msg := Classify(err)
		u.logger.Error().Err(err).Str("category", string(category)).Msg("generation failed")
		return u.failed(req, category, msg)
	}

	// 5. Extract the answer
	answer := ExtractAnswer(result)
	return &entity.ChatResult{
		Answer:     answer,
		Sources:    sourceIDs(passages),
		SearchUsed: searchUsed,
		TokenCount: TokenCount(result),
		History:    appendExchange(req.History, req.Query, answer),
	}
}

func (u *Orchestrator) failed(req entity.ChatRequest, category entity.ErrorCategory, msg string) *entity.ChatResult {
	answer := "Error: " + msg
	return &entity.ChatResult{
		Answer:     answer,
		Sources:    []string{},
		SearchUsed: entity.SearchError,
		Category:   category,
		History:    appendExchange(req.History, req.Query, answer),
	}
}

func (u *Orchestrator) retrieve(ctx context.Context, query string) []entity.Passage {
	if !u.RetrievalEnabled() || strings.TrimSpace(query) == "" {
		return nil
	}

	vector, err := u.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		u.logger.Warn().Err(err).Msg("query embedding failed, answering without retrieval")
		return nil
	}

	passages, err := u.vectorStore.Search(ctx, vector, u.retrievalLimit)
	if err != nil {
		u.logger.Warn().Err(err).Msg("vector search failed, answering without retrieval")
		return nil
	}
	return passages
}

// buildGrounding merges the user's selection with retrieved excerpts.
func buildGrounding(selected string, passages []entity.Passage) string {
	parts := make([]string, 0, len(passages)+1)
	if s := strings.TrimSpace(selected); s != "" {
		parts = append(parts, s)
	}
	for _, p := range passages {
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", p.SourceID, p.Content))
	}
	return strings.Join(parts, "\n\n")
}

func sourceIDs(passages []entity.Passage) []string {
	ids := lo.Uniq(lo.FilterMap(passages, func(p entity.Passage, _ int) (string, bool) {
		return p.SourceID, p.SourceID != ""
	}))
	if ids == nil {
		return []string{}
	}
	return ids
}

func appendExchange(history []entity.ConversationTurn, query, answer string) []entity.ConversationTurn {
	out := make([]entity.ConversationTurn, 0, len(history)+2)
	out = append(out, history...)
	return append(out,
		entity.ConversationTurn{Role: entity.RoleUser, Content: query},
		entity.ConversationTurn{Role: entity.RoleAssistant, Content: answer},
	)
}
