package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"textbook-tutor/internal/domain/entity"
)

var fastRetry = ResilienceOptions{MaxRetries: 2, BaseDelay: time.Millisecond}

func TestResilientProvider_RetriesTransientFailures(t *testing.T) {
	var calls int32
	primary := funcProvider(func(context.Context, entity.GenerationRequest) (entity.GenerationResult, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, &entity.ProviderError{StatusCode: 503, Message: "overloaded"}
		}
		return "ok", nil
	})

	r := NewResilientProvider(primary, nil, fastRetry, testLogger)
	res, err := r.Invoke(context.Background(), entity.GenerationRequest{Input: "x"})

	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestResilientProvider_DoesNotRetryQuota(t *testing.T) {
	quota := &entity.ProviderError{StatusCode: 429, Message: "insufficient_quota"}
	p := new(mockProvider)
	p.On("Invoke", mock.Anything, mock.Anything).Return(nil, quota)

	r := NewResilientProvider(p, nil, fastRetry, testLogger)
	_, err := r.Invoke(context.Background(), entity.GenerationRequest{})

	require.Error(t, err)
	var perr *entity.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 429, perr.StatusCode)
	p.AssertNumberOfCalls(t, "Invoke", 1)

	category, _ := Classify(err)
	assert.Equal(t, entity.CategoryQuotaExceeded, category)
}

func TestResilientProvider_GivesUpAfterMaxRetries(t *testing.T) {
	p := new(mockProvider)
	p.On("Invoke", mock.Anything, mock.Anything).Return(nil, &entity.ProviderError{StatusCode: 429, Message: "slow down"})

	r := NewResilientProvider(p, nil, fastRetry, testLogger)
	_, err := r.Invoke(context.Background(), entity.GenerationRequest{})

	require.Error(t, err)
	p.AssertNumberOfCalls(t, "Invoke", 3)
	category, _ := Classify(err)
	assert.Equal(t, entity.CategoryRateLimited, category)
}

func TestResilientProvider_FallsBackWithFallbackModel(t *testing.T) {
	primary := new(mockProvider)
	primary.On("Invoke", mock.Anything, mock.Anything).Return(nil, &entity.ProviderError{StatusCode: 500, Message: "down"})

	fallback := new(mockProvider)
	fallback.On("Invoke", mock.Anything, mock.MatchedBy(func(req entity.GenerationRequest) bool {
		return req.ModelID == "gemini-2.5-flash" && req.Input == "hello"
	})).Return("from fallback", nil).Once()

	opts := fastRetry
	opts.FallbackModel = "gemini-2.5-flash"
	r := NewResilientProvider(primary, fallback, opts, testLogger)

	res, err := r.Invoke(context.Background(), entity.GenerationRequest{ModelID: "gpt-4o-mini", Input: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", res)
	primary.AssertNumberOfCalls(t, "Invoke", 3)
	fallback.AssertExpectations(t)
}

func TestResilientProvider_NoFallbackOnBadCredentials(t *testing.T) {
	primary := new(mockProvider)
	primary.On("Invoke", mock.Anything, mock.Anything).Return(nil, &entity.ProviderError{StatusCode: 401, Message: "bad key"})
	fallback := new(mockProvider)

	r := NewResilientProvider(primary, fallback, fastRetry, testLogger)
	_, err := r.Invoke(context.Background(), entity.GenerationRequest{})

	require.Error(t, err)
	fallback.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestResilientProvider_FallbackErrorStillClassifies(t *testing.T) {
	primary := new(mockProvider)
	primary.On("Invoke", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	fallback := new(mockProvider)
	fallback.On("Invoke", mock.Anything, mock.Anything).Return(nil, &entity.ProviderError{StatusCode: 429, Message: "quota"})

	r := NewResilientProvider(primary, fallback, fastRetry, testLogger)
	_, err := r.Invoke(context.Background(), entity.GenerationRequest{})

	category, _ := Classify(err)
	assert.Equal(t, entity.CategoryQuotaExceeded, category)
}

func TestResilientProvider_Timeout(t *testing.T) {
	slow := funcProvider(func(ctx context.Context, _ entity.GenerationRequest) (entity.GenerationResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	opts := fastRetry
	opts.Timeout = 20 * time.Millisecond
	r := NewResilientProvider(slow, nil, opts, testLogger)

	start := time.Now()
	_, err := r.Invoke(context.Background(), entity.GenerationRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResilientProvider_Pacing(t *testing.T) {
	var calls int32
	p := funcProvider(func(context.Context, entity.GenerationRequest) (entity.GenerationResult, error) {
		atomic.AddInt32(&calls, 1)
		return "ok", nil
	})

	opts := fastRetry
	opts.RPS = 1000
	r := NewResilientProvider(p, nil, opts, testLogger)
	require.NotNil(t, r.limiter)

	for i := 0; i < 5; i++ {
		_, err := r.Invoke(context.Background(), entity.GenerationRequest{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestResilientProvider_DeadlineKeepsProviderError(t *testing.T) {
	p := new(mockProvider)
	p.On("Invoke", mock.Anything, mock.Anything).
		Return(nil, &entity.ProviderError{Provider: "openai", StatusCode: 429, Message: "Rate limit reached"})

	r := NewResilientProvider(p, nil, ResilienceOptions{
		MaxRetries: 5,
		BaseDelay:  50 * time.Millisecond,
		Timeout:    80 * time.Millisecond,
	}, testLogger)

	_, err := r.Invoke(context.Background(), entity.GenerationRequest{})
	require.Error(t, err)

	var perr *entity.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 429, perr.StatusCode)
	category, msg := Classify(err)
	assert.Equal(t, entity.CategoryRateLimited, category)
	assert.Equal(t, entity.CategoryRateLimited.Message(), msg)
}

func TestResilientProvider_RetriesUnreachableProvider(t *testing.T) {
	var calls int32
	p := funcProvider(func(context.Context, entity.GenerationRequest) (entity.GenerationResult, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, &entity.ProviderError{Provider: "openai", Message: "dial tcp: connection refused"}
		}
		return "ok", nil
	})

	r := NewResilientProvider(p, nil, fastRetry, testLogger)
	res, err := r.Invoke(context.Background(), entity.GenerationRequest{})

	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
