package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"textbook-tutor/internal/bootstrap"
	"textbook-tutor/internal/config"
	"textbook-tutor/internal/logger"
	"textbook-tutor/internal/usecase"
)

func main() {
	docsDir := flag.String("docs", "docs", "directory of markdown chapters to ingest")
	envFile := flag.String("env", ".env", "optional dotenv file")
	create := flag.Bool("create-collection", true, "create the collection if it does not exist")
	flag.Parse()

	cfg, envLoaded, err := config.Load(*envFile)
	if err != nil {
		log := logger.New("info", false, nil)
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty, nil)
	if !envLoaded {
		log.Warn().Str("file", *envFile).Msg("env file not found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	vectorStore, err := bootstrap.VectorStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init vector store")
	}
	if vectorStore == nil {
		log.Fatal().Msg("QDRANT_URL or QDRANT_HOST must be set")
	}
	embedder, err := bootstrap.Embedder(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init embedder")
	}
	if embedder == nil {
		log.Fatal().Msg("EMBEDDING_PROVIDER must be openai or gemini")
	}

	if *create {
		if err := vectorStore.InitCollection(ctx, cfg.QdrantVectorSize); err != nil {
			log.Fatal().Err(err).Msg("failed to init qdrant collection")
		}
	}

	ingestor := usecase.NewIngestor(embedder, vectorStore, log)
	stats, err := ingestor.IngestDir(ctx, os.DirFS(*docsDir))
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion aborted")
	}
	log.Info().Int("files", stats.Files).Int("chunks", stats.Chunks).Str("collection", cfg.QdrantCollection).Msg("ingestion complete")
}
