package query

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/metrics"
	"github.com/collegegpt/backend/internal/storage"
	"github.com/collegegpt/backend/pkg/config"
	"github.com/collegegpt/backend/pkg/logger"
	"github.com/collegegpt/backend/pkg/textutil"
)

const missingCachedAnswer = "I found a similar question but the answer seems to be missing."

// CachePolicy decides when a cached answer may be reused.
type CachePolicy struct {
	Enabled   bool
	Threshold float64
	Window    time.Duration
	Recent    int
	// Bypass lists question substrings whose answers must always be fresh.
	Bypass []string
}

func PolicyFromConfig(c config.CacheConfig) CachePolicy {
	return CachePolicy{
		Enabled:   c.Enabled,
		Threshold: c.SimilarityThreshold,
		Window:    c.Window(),
		Recent:    c.RecentLimit,
		Bypass:    c.BypassKeywords,
	}
}

func (p CachePolicy) Bypassed(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range p.Bypass {
		if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// CacheStrategy reuses a recent answer to a near-duplicate question.
type CacheStrategy struct {
	cache   storage.AnswerCache
	policy  CachePolicy
	baseURL string
	timeout time.Duration
	now     func() time.Time
}

func NewCacheStrategy(cache storage.AnswerCache, policy CachePolicy, baseURL string, timeout time.Duration) *CacheStrategy {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &CacheStrategy{cache: cache, policy: policy, baseURL: baseURL, timeout: timeout, now: time.Now}
}

func (c *CacheStrategy) Name() string {
	return "cache"
}

func (c *CacheStrategy) Attempt(ctx context.Context, question string) (*Answer, bool) {
	if c.cache == nil || !c.policy.Enabled {
		return nil, false
	}
	if c.policy.Bypassed(question) {
		logger.Debug("Cache bypassed for fresh-data question", zap.String("question", question))
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	entries, err := c.cache.RecentAnswers(ctx, c.policy.Recent)
	if err != nil {
		logger.Warn("Answer cache lookup failed", zap.Error(err))
		metrics.CacheMisses.WithLabelValues("answer").Inc()
		return nil, false
	}

	normalized := textutil.Normalize(question)
	now := c.now()

	best := -1
	bestScore := 0.0
	for i, e := range entries {
		if e.NormalizedQuestion == "" || e.Age(now) >= c.policy.Window {
			continue
		}
		score := textutil.Similarity(normalized, e.NormalizedQuestion)
		if score >= c.policy.Threshold && score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		metrics.CacheMisses.WithLabelValues("answer").Inc()
		return nil, false
	}

	hit := entries[best]
	metrics.CacheHits.WithLabelValues("answer").Inc()
	logger.Info("Using cached answer",
		zap.String("id", hit.ID),
		zap.Float64("similarity", bestScore),
		zap.Duration("age", hit.Age(now)),
	)

	text := hit.AnswerHTML
	if strings.TrimSpace(text) == "" {
		text = missingCachedAnswer
	}
	sources := hit.SourceURLs
	if len(sources) == 0 {
		sources = []string{c.baseURL}
	}

	return &Answer{
		Text:    text,
		Images:  hit.ImageURLs,
		Sources: sources,
		Success: true,
		Cached:  true,
	}, true
}
