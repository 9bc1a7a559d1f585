// Package llm treats the hosted language model as a text-to-text function.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/metrics"
	"github.com/collegegpt/backend/pkg/circuitbreaker"
	"github.com/collegegpt/backend/pkg/config"
	"github.com/collegegpt/backend/pkg/logger"
	"github.com/collegegpt/backend/pkg/retry"
)

// ErrEmptyResponse is returned when the model answers with blank text.
var ErrEmptyResponse = errors.New("language model returned an empty response")

type Request struct {
	SystemInstruction string
	Prompt            string
	Temperature       float32
	MaxTokens         int
}

type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New builds the generator selected by cfg.Provider.
func New(cfg config.LLMConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, eris.New("llm.apiKey is required")
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "openai", "gemini":
		return NewOpenAIClient(cfg), nil
	case "anthropic":
		return NewAnthropicClient(cfg), nil
	default:
		return nil, eris.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// guard wraps every provider call in the same circuit breaker and retry
// policy. Authentication and quota failures are not retried.
type guard struct {
	provider    string
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func newGuard(provider string, cfg config.LLMConfig) guard {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	cb := circuitbreaker.NewCircuitBreaker("llm-"+provider, circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		IsFailure: func(err error) bool {
			return Classify(err) != KindAuthentication
		},
		Logger: logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		ShouldRetry: func(err error) bool {
			kind := Classify(err)
			return kind != KindAuthentication && kind != KindQuota
		},
		Logger: logger.GetLogger(),
	}

	return guard{
		provider:    provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

// defaults fills zero request fields from the client configuration.
func (g guard) defaults(req Request) Request {
	if req.Temperature == 0 {
		req.Temperature = g.temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = g.maxTokens
	}
	return req
}

func (g guard) run(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	var text string
	err := g.cb.Execute(func() error {
		return retry.Do(ctx, g.retryConfig, func() error {
			out, err := call(ctx)
			if err != nil {
				return err
			}
			if strings.TrimSpace(out) == "" {
				return ErrEmptyResponse
			}
			text = out
			return nil
		})
	})

	outcome := "success"
	if err != nil {
		outcome = string(Classify(err))
		logger.Warn("Language model call failed",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.String("kind", outcome),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	}
	metrics.LLMRequests.WithLabelValues(g.provider, outcome).Inc()
	return text, err
}
