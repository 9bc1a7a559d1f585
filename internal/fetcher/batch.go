package fetcher

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// FetchAll fetches every URL concurrently with all-settled semantics: a
// failing URL never cancels its siblings. Results keep the order of urls.
func FetchAll(ctx context.Context, f Fetcher, urls []string, concurrency int) []Result {
	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return results
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			results[i] = safeFetch(ctx, f, u)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Succeeded filters results down to successful fetches.
func Succeeded(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Success {
			out = append(out, r)
		}
	}
	return out
}

func safeFetch(ctx context.Context, f Fetcher, url string) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{URL: url, Err: "fetch panicked"}
		}
	}()
	return f.Fetch(ctx, url)
}
