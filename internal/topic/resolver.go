package topic

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/collegegpt/backend/pkg/logger"
)

// URLSource is the read side of the topic configuration document.
type URLSource interface {
	LoadTopicURLs(ctx context.Context) (map[string][]string, error)
}

type Resolver struct {
	source  URLSource
	static  map[Topic][]string
	timeout time.Duration
}

// NewResolver builds a resolver that prefers source and falls back to the
// static table rooted at baseURL. source may be nil.
func NewResolver(source URLSource, baseURL string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Resolver{
		source:  source,
		static:  StaticURLs(baseURL),
		timeout: timeout,
	}
}

// Resolve never fails: a store error, timeout or empty entry yields the static
// list, and an unconfigured topic yields an empty, non-nil slice.
func (r *Resolver) Resolve(ctx context.Context, t Topic) []string {
	if t == None {
		return []string{}
	}

	if r.source != nil {
		if urls := r.fromStore(ctx, t); len(urls) > 0 {
			logger.Debug("Resolved topic URLs from store", zap.String("topic", t.String()), zap.Int("count", len(urls)))
			return urls
		}
	}

	static := r.static[t]
	logger.Debug("Using static topic URLs", zap.String("topic", t.String()), zap.Int("count", len(static)))
	return append([]string{}, static...)
}

// Static returns a copy of the fallback table. Seeding writes it to the store.
func (r *Resolver) Static() map[Topic][]string {
	out := make(map[Topic][]string, len(r.static))
	for t, urls := range r.static {
		out[t] = append([]string(nil), urls...)
	}
	return out
}

func (r *Resolver) fromStore(ctx context.Context, t Topic) (urls []string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Topic URL store panicked", zap.Any("panic", rec))
			urls = nil
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	mapping, err := r.source.LoadTopicURLs(ctx)
	if err != nil {
		logger.Warn("Topic URL store unavailable", zap.String("topic", t.String()), zap.Error(err))
		return nil
	}

	for _, u := range mapping[t.String()] {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
