package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"textbook-tutor/internal/domain/entity"
	"textbook-tutor/internal/domain/repository"
)

type ResilienceOptions struct {
	MaxRetries    int
	BaseDelay     time.Duration
	Timeout       time.Duration // per Invoke, retries included; 0 disables
	FallbackModel string        // model id used against the fallback provider
	RPS           float64       // 0 disables pacing
}

// ResilientProvider retries the primary provider on transient failures and
// then tries the fallback once. It is itself a ProviderClient, and the error
// it returns still classifies like the provider's own.
type ResilientProvider struct {
	primary       repository.ProviderClient
	fallback      repository.ProviderClient // optional Plan B
	fallbackModel string
	maxRetries    uint64
	baseDelay     time.Duration
	timeout       time.Duration
	limiter       *rate.Limiter
	logger        zerolog.Logger
}

func NewResilientProvider(primary, fallback repository.ProviderClient, opts ResilienceOptions, logger zerolog.Logger) *ResilientProvider {
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	r := &ResilientProvider{
		primary:       primary,
		fallback:      fallback,
		fallbackModel: opts.FallbackModel,
		maxRetries:    uint64(opts.MaxRetries),
		baseDelay:     opts.BaseDelay,
		timeout:       opts.Timeout,
		logger:        logger.With().Str("component", "resilientProvider").Logger(),
	}
	if opts.RPS > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.RPS), max(1, int(opts.RPS)))
	}
	return r
}

func (r *ResilientProvider) Invoke(ctx context.Context, req entity.GenerationRequest) (entity.GenerationResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	result, err := r.executeWithRetry(ctx, r.primary, req)
	if err == nil {
		return result, nil
	}
	if r.fallback == nil || ctx.Err() != nil {
		return nil, err
	}

	category, _ := Classify(err)
	if category == entity.CategoryInvalidCredentials || category == entity.CategoryConfiguration {
		// Same credentials would be rejected again.
		return nil, err
	}

	r.logger.Warn().Err(err).Str("agent", req.AgentName).Msg("primary provider exhausted, switching to fallback")

	fbReq := req
	if r.fallbackModel != "" {
		fbReq.ModelID = r.fallbackModel
	}
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	result, fbErr := r.fallback.Invoke(ctx, fbReq)
	if fbErr != nil {
		return nil, fmt.Errorf("primary and fallback failed: %w", fbErr)
	}
	return result, nil
}

func (r *ResilientProvider) executeWithRetry(ctx context.Context, p repository.ProviderClient, req entity.GenerationRequest) (entity.GenerationResult, error) {
	var (
		result  entity.GenerationResult
		lastErr error
	)
	attempt := 0

	operation := func() error {
		attempt++
		if err := r.wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		res, err := p.Invoke(ctx, req)
		if err != nil {
			lastErr = err
			if !retryable(ctx, err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = res
		return nil
	}

	notify := func(err error, next time.Duration) {
		r.logger.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", next).Msg("transient provider failure, retrying")
	}

	if err := backoff.RetryNotify(operation, r.newBackOff(ctx), notify); err != nil {
		// A deadline hit while waiting between attempts says nothing about
		// the provider; report what the provider last said instead.
		if ctx.Err() != nil && lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}
	return result, nil
}

// retryable reports whether another attempt could succeed. Unreachable
// providers are retried only while the caller's context is still live.
func retryable(ctx context.Context, err error) bool {
	if category, _ := Classify(err); category.Retryable() {
		return true
	}
	return errors.Is(err, entity.ErrProviderUnavailable) && ctx.Err() == nil
}

func (r *ResilientProvider) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.baseDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0.2
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, r.maxRetries), ctx)
}

func (r *ResilientProvider) wait(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}
