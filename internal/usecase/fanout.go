package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"textbook-tutor/internal/domain/entity"
)

// DefaultMaxConcurrency caps in-flight chunk tasks when no limit is configured.
const DefaultMaxConcurrency = 32

// ChunkTask transforms a single chunk.
type ChunkTask func(ctx context.Context, chunk entity.DocumentChunk) (string, error)

// FanoutExecutor runs chunk tasks concurrently. Every chunk yields exactly
// one outcome, in input order, regardless of completion order or failures.
type FanoutExecutor struct {
	maxConcurrency int
	chunkTimeout   time.Duration
	logger         zerolog.Logger
}

// NewFanoutExecutor builds an executor. maxConcurrency <= 0 means the default
// cap; chunkTimeout <= 0 lets each task run as long as its context allows.
func NewFanoutExecutor(maxConcurrency int, chunkTimeout time.Duration, logger zerolog.Logger) *FanoutExecutor {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &FanoutExecutor{
		maxConcurrency: maxConcurrency,
		chunkTimeout:   chunkTimeout,
		logger:         logger.With().Str("component", "fanout").Logger(),
	}
}

// Run dispatches task for every chunk and waits for all of them. label names
// the transformation in failure placeholders, e.g. "Translation".
func (f *FanoutExecutor) Run(ctx context.Context, chunks []entity.DocumentChunk, label string, task ChunkTask) []entity.ChunkOutcome {
	if len(chunks) == 0 {
		return []entity.ChunkOutcome{}
	}

	limit := min(len(chunks), f.maxConcurrency)
	sem := make(chan struct{}, limit)
	outcomes := make([]entity.ChunkOutcome, len(chunks))

	start := time.Now()
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[i] = f.runOne(ctx, chunk, label, task)
		}()
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Failed {
			failed++
		}
	}
	f.logger.Debug().
		Str("label", label).
		Int("chunks", len(chunks)).
		Int("failed", failed).
		Int("concurrency", limit).
		Dur("elapsed", time.Since(start)).
		Msg("fan-out complete")

	return outcomes
}

func (f *FanoutExecutor) runOne(ctx context.Context, chunk entity.DocumentChunk, label string, task ChunkTask) (outcome entity.ChunkOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = f.failure(chunk, label, fmt.Errorf("panic: %v", r))
		}
	}()

	if f.chunkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.chunkTimeout)
		defer cancel()
	}

	text, err := task(ctx, chunk)
	if err != nil {
		return f.failure(chunk, label, err)
	}
	return entity.ChunkOutcome{Index: chunk.Index, Text: text}
}

func (f *FanoutExecutor) failure(chunk entity.DocumentChunk, label string, err error) entity.ChunkOutcome {
	f.logger.Warn().Err(err).Str("label", label).Int("chunk", chunk.Index).Msg("chunk task failed")
	return entity.ChunkOutcome{
		Index:  chunk.Index,
		Text:   FailurePlaceholder(label, err),
		Failed: true,
	}
}

// FailurePlaceholder is the in-line marker written in place of a failed chunk.
func FailurePlaceholder(label string, err error) string {
	return fmt.Sprintf("[%s for this section failed: %s]", label, err.Error())
}
