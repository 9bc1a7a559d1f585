// Package query answers questions by running an ordered cascade of
// strategies, from the answer cache through live topic scrapes to a
// general-page fallback, and returning the first answer produced.
package query

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/answer"
	"github.com/collegegpt/backend/internal/metrics"
	"github.com/collegegpt/backend/internal/storage"
	"github.com/collegegpt/backend/internal/storage/models"
	"github.com/collegegpt/backend/pkg/logger"
	"github.com/collegegpt/backend/pkg/textutil"
)

// Strategy is one stage of the cascade. Attempt reports false when the
// stage has no answer and the next one should run.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, question string) (*Answer, bool)
}

type Engine struct {
	strategies  []Strategy
	store       storage.AnswerCache
	canned      answer.Canned
	saveTimeout time.Duration
	now         func() time.Time
}

type Option func(*Engine)

// WithStore enables writing live answers back to store.
func WithStore(store storage.AnswerCache, timeout time.Duration) Option {
	return func(e *Engine) {
		e.store = store
		if timeout > 0 {
			e.saveTimeout = timeout
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(canned answer.Canned, strategies []Strategy, opts ...Option) *Engine {
	e := &Engine{
		strategies:  strategies,
		canned:      canned,
		saveTimeout: 3 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask runs the cascade and always returns an envelope. Cancellation of ctx
// does not stop the stages: they run to completion or to their own timeouts.
func (e *Engine) Ask(ctx context.Context, question string) Envelope {
	ctx = context.WithoutCancel(ctx)
	question = strings.TrimSpace(question)
	start := time.Now()
	requestID := uuid.New().String()

	logger.Info("Processing question",
		zap.String("request_id", requestID),
		zap.String("question", question),
	)

	for _, s := range e.strategies {
		ans, ok := e.attempt(ctx, s, question)
		if !ok {
			continue
		}

		if ans.Cacheable && ans.Success {
			e.remember(ctx, question, s.Name(), ans)
		}

		env := ans.envelope(s.Name())
		e.observe(requestID, env, start)
		return env
	}

	env := Envelope{
		Success:  false,
		Answer:   e.canned.Apology(question),
		Images:   []string{},
		Sources:  []string{e.canned.BaseURL},
		Strategy: "apology",
	}
	e.observe(requestID, env, start)
	return env
}

// Strategies lists the stage names in cascade order.
func (e *Engine) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

func (e *Engine) attempt(ctx context.Context, s Strategy, question string) (ans *Answer, ok bool) {
	stageStart := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Strategy panicked",
				zap.String("stage", s.Name()),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			metrics.StageOutcomes.WithLabelValues(s.Name(), "panic").Inc()
			ans, ok = nil, false
		}
	}()

	ans, ok = s.Attempt(ctx, question)
	if !ok || ans == nil {
		logger.Debug("Strategy produced no answer",
			zap.String("stage", s.Name()),
			zap.Duration("duration", time.Since(stageStart)),
		)
		metrics.StageOutcomes.WithLabelValues(s.Name(), "skipped").Inc()
		return nil, false
	}

	logger.Info("Strategy answered",
		zap.String("stage", s.Name()),
		zap.String("topic", ans.Topic),
		zap.Bool("success", ans.Success),
		zap.Duration("duration", time.Since(stageStart)),
	)
	metrics.StageOutcomes.WithLabelValues(s.Name(), "answered").Inc()
	return ans, true
}

// remember writes a live answer to the cache. Failures are logged and ignored.
func (e *Engine) remember(ctx context.Context, question, strategy string, ans *Answer) {
	if e.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, e.saveTimeout)
	defer cancel()

	t := ans.Topic
	if t == "" {
		t = "general"
	}

	normalized := textutil.Normalize(question)
	entry := models.CacheEntry{
		ID:                 uuid.New().String(),
		Question:           question,
		NormalizedQuestion: normalized,
		SimilarityHash:     textutil.Hash(normalized),
		AnswerHTML:         ans.Text,
		SourceURLs:         ans.Sources,
		ImageURLs:          ans.Images,
		Topic:              t,
		Strategy:           strategy,
		URLsScraped:        ans.URLsScraped,
		CreatedAt:          e.now(),
	}

	if err := e.store.SaveAnswer(ctx, entry); err != nil {
		logger.Warn("Failed to cache answer", zap.String("strategy", strategy), zap.Error(err))
		return
	}
	logger.Debug("Answer cached", zap.String("id", entry.ID), zap.String("strategy", strategy))
}

func (e *Engine) observe(requestID string, env Envelope, start time.Time) {
	duration := time.Since(start)
	metrics.RequestsTotal.WithLabelValues(env.Strategy, strconv.FormatBool(env.Success)).Inc()
	metrics.RequestDuration.WithLabelValues(env.Strategy).Observe(duration.Seconds())

	logger.Info("Question answered",
		zap.String("request_id", requestID),
		zap.String("strategy", env.Strategy),
		zap.String("topic", env.Topic),
		zap.Bool("success", env.Success),
		zap.Bool("cached", env.Cached),
		zap.Int("urls_scraped", env.URLsScraped),
		zap.Duration("duration", duration),
	)
}
