package query

import (
	"context"
	"time"

	"github.com/collegegpt/backend/internal/answer"
	"github.com/collegegpt/backend/internal/extract"
	"github.com/collegegpt/backend/internal/fetcher"
	"github.com/collegegpt/backend/internal/storage"
	"github.com/collegegpt/backend/internal/topic"
)

type URLResolver interface {
	Resolve(ctx context.Context, t topic.Topic) []string
}

type AnswerGenerator interface {
	Generate(ctx context.Context, in answer.Input) (string, error)
}

// Env is what the scraping strategies share.
type Env struct {
	Resolver    URLResolver
	Fetcher     fetcher.Fetcher
	Generator   AnswerGenerator
	Canned      answer.Canned
	Concurrency int
}

// Cascade builds the standard stage order: cache, robust, dynamic,
// structured, targeted page, general pages.
func Cascade(env *Env, cache storage.AnswerCache, policy CachePolicy, cacheTimeout time.Duration) []Strategy {
	return []Strategy{
		NewCacheStrategy(cache, policy, env.Canned.BaseURL, cacheTimeout),
		NewRobust(env),
		NewDynamic(env),
		NewStructured(env),
		NewTargeted(env),
		NewStatic(env),
	}
}

// scrape fetches every URL in parallel and runs ex on each page that
// loaded. Pages that failed to load are kept as failed content so the
// formatter can report them.
func (e *Env) scrape(ctx context.Context, t topic.Topic, urls []string, ex extract.Extractor) (pages []extract.Content, loaded int) {
	results := fetcher.FetchAll(ctx, e.Fetcher, urls, e.Concurrency)

	pages = make([]extract.Content, 0, len(results))
	for _, r := range results {
		if !r.Success {
			pages = append(pages, extract.Failed(r.URL, t, ex.Name(), r.Err))
			continue
		}
		loaded++

		pages = append(pages, ex.Extract(r.HTML, t, r.URL))
	}
	return pages, loaded
}

func successful(pages []extract.Content) []extract.Content {
	var out []extract.Content
	for _, p := range pages {
		if p.Success {
			out = append(out, p)
		}
	}
	return out
}

// uniqueImages merges image URLs across pages, first seen first, up to limit.
func uniqueImages(limit int, lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, u := range list {
			if _, dup := seen[u]; dup || u == "" {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
