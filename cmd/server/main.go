package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"textbook-tutor/internal/adapter/api"
	"textbook-tutor/internal/adapter/store"
	"textbook-tutor/internal/bootstrap"
	"textbook-tutor/internal/config"
	"textbook-tutor/internal/domain/repository"
	"textbook-tutor/internal/logger"
	"textbook-tutor/internal/usecase"
)

func main() {
	cfg, envLoaded, err := config.Load(".env")
	if err != nil {
		log := logger.New("info", false, nil)
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty, nil)
	if !envLoaded {
		log.Warn().Msg(".env file not found, using system environment variables")
	}
	ctx := context.Background()

	// LLM provider; without a key the service still starts and reports the problem per request
	var provider repository.ProviderClient
	if p, err := bootstrap.Provider(ctx, cfg, log); err != nil {
		log.Warn().Err(err).Str("provider", cfg.LLMProvider).Msg("LLM provider not initialized")
	} else {
		provider = p
		log.Info().Str("provider", cfg.LLMProvider).Str("key_preview", config.KeyPreview(cfg.ProviderAPIKey())).Msg("LLM provider ready")
	}

	// Qdrant for passage retrieval
	vectorStore, err := bootstrap.VectorStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init vector store")
	}
	embedder, err := bootstrap.Embedder(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("embedding_provider", cfg.EmbeddingProvider).Msg("embedder not initialized, retrieval disabled")
		embedder = nil
	}

	var (
		search repository.VectorStore
		health repository.CollectionHealthChecker
	)
	if vectorStore != nil {
		search, health = vectorStore, vectorStore
	}

	// Redis for per-user token budgets
	var limiter repository.TokenLimiter
	if cfg.RedisAddr != "" && cfg.UserTokenLimit > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = store.NewRedisLimiter(rdb, cfg.UserTokenLimit)
	}

	orchestrator := usecase.NewOrchestrator(provider, embedder, search, usecase.TutorAgent(cfg.ChatModel), cfg.RetrievalLimit, log)
	fanout := usecase.NewFanoutExecutor(cfg.FanoutMaxConcurrency, cfg.ChunkTimeout, log)
	pipeline := usecase.NewTransformPipeline(provider, fanout,
		usecase.TranslatorAgent(cfg.TranslateModel),
		usecase.ContentAdaptorAgent(cfg.PersonalizeModel),
		log)

	if vectorStore != nil {
		go func() {
			warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			h, err := vectorStore.Health(warmCtx)
			if err != nil {
				log.Warn().Err(err).Msg("vector store warm-up failed")
				return
			}
			log.Info().Str("collection", h.Name).Bool("exists", h.Exists).Uint64("points", h.PointsCount).Msg("vector store reachable")
		}()
	}

	app := fiber.New(fiber.Config{
		AppName: "Textbook Tutor",
	})

	handler := api.NewHandler(orchestrator, pipeline, limiter, health, api.ConfigStatus{
		Provider:           cfg.LLMProvider,
		ProviderConfigured: provider != nil,
		KeyPreview:         config.KeyPreview(cfg.ProviderAPIKey()),
		RetrievalEnabled:   orchestrator.RetrievalEnabled(),
		QdrantConfigured:   cfg.QdrantConfigured(),
		RedisConfigured:    limiter != nil,
	}, log)
	api.SetupRouter(app, handler, api.RouterOptions{
		Version:     cfg.AppVersion,
		Env:         cfg.Env,
		CORSOrigins: cfg.CORSOrigins,
	})

	log.Info().Str("port", cfg.Port).Msg("Textbook Tutor running")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
