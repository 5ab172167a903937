package usecase

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"textbook-tutor/internal/domain/entity"
	"textbook-tutor/internal/domain/repository"
)

const (
	minPassageLen = 10
	maxPayloadLen = 1000
)

type IngestStats struct {
	Files  int
	Chunks int
}

// Ingestor loads markdown chapters into the vector store, one batch per file.
type Ingestor struct {
	embedder repository.Embedder
	writer   repository.PassageWriter
	logger   zerolog.Logger
}

func NewIngestor(emb repository.Embedder, w repository.PassageWriter, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		embedder: emb,
		writer:   w,
		logger:   logger.With().Str("component", "ingestor").Logger(),
	}
}

// IngestDir walks root for *.md files. A failing file is logged and skipped.
func (in *Ingestor) IngestDir(ctx context.Context, fsys fs.FS) (IngestStats, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(path.Ext(name), ".md") {
			files = append(files, name)
		}
		return nil
	})
	if err != nil {
		return IngestStats{}, fmt.Errorf("walking docs: %w", err)
	}
	sort.Strings(files)

	var stats IngestStats
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			in.logger.Warn().Err(err).Str("file", name).Msg("read failed, skipping")
			continue
		}
		n, err := in.IngestFile(ctx, name, string(data))
		if err != nil {
			in.logger.Warn().Err(err).Str("file", name).Msg("ingest failed, skipping")
			continue
		}
		if n > 0 {
			stats.Files++
			stats.Chunks += n
		}
		in.logger.Info().Int("file", i+1).Int("of", len(files)).Str("path", name).Int("chunks", n).Msg("ingested")
	}
	return stats, nil
}

// IngestFile embeds and upserts the meaningful chunks of one document.
// Chunks that fail to embed are dropped; the rest are still written.
func (in *Ingestor) IngestFile(ctx context.Context, source, content string) (int, error) {
	var (
		passages []entity.Passage
		vectors  [][]float32
	)
	for _, chunk := range SplitDocument(content) {
		if len(chunk.Text) <= minPassageLen {
			continue
		}
		vector, err := in.embedder.CreateEmbedding(ctx, chunk.Text)
		if err != nil {
			in.logger.Warn().Err(err).Str("file", source).Int("chunk", chunk.Index).Msg("embedding failed")
			continue
		}
		passages = append(passages, entity.Passage{
			Content:    truncate(chunk.Text, maxPayloadLen),
			SourceID:   source,
			ChunkIndex: chunk.Index,
		})
		vectors = append(vectors, vector)
	}

	if len(passages) == 0 {
		return 0, nil
	}
	if err := in.writer.Upsert(ctx, passages, vectors); err != nil {
		return 0, fmt.Errorf("upserting %s: %w", source, err)
	}
	return len(passages), nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
