package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"textbook-tutor/internal/domain/entity"
)

var testLogger = zerolog.Nop()

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Invoke(ctx context.Context, req entity.GenerationRequest) (entity.GenerationResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0), args.Error(1)
}

// inputContains matches requests whose input carries substr.
func inputContains(substr string) any {
	return mock.MatchedBy(func(req entity.GenerationRequest) bool {
		return strings.Contains(req.Input, substr)
	})
}

type funcProvider func(ctx context.Context, req entity.GenerationRequest) (entity.GenerationResult, error)

func (f funcProvider) Invoke(ctx context.Context, req entity.GenerationRequest) (entity.GenerationResult, error) {
	return f(ctx, req)
}

type fakeEmbedder struct {
	err   error
	mu    sync.Mutex
	calls []string
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 0.5}, nil
}

type fakeVectorStore struct {
	passages  []entity.Passage
	err       error
	lastLimit int
}

func (f *fakeVectorStore) Search(_ context.Context, _ []float32, limit int) ([]entity.Passage, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

type fakeWriter struct {
	err      error
	passages []entity.Passage
	vectors  [][]float32
	batches  int
}

func (f *fakeWriter) Upsert(_ context.Context, passages []entity.Passage, vectors [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.batches++
	f.passages = append(f.passages, passages...)
	f.vectors = append(f.vectors, vectors...)
	return nil
}
