// Package fetcher retrieves raw HTML for college pages. Fetches never return
// an error: every outcome, including transport failures and non-2xx statuses,
// is reported in a Result.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/metrics"
	"github.com/collegegpt/backend/pkg/logger"
)

const (
	UserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader  = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"
	defaultMaxDoc = 5 << 20
)

var browserHeaders = map[string]string{
	"User-Agent":                UserAgent,
	"Accept":                    acceptHeader,
	"Accept-Language":           "en-US,en;q=0.9",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Cache-Control":             "max-age=0",
}

type Result struct {
	URL        string
	Success    bool
	StatusCode int
	HTML       string
	Err        string
	Duration   time.Duration
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) Result
}

type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
	Transport    http.RoundTripper
}

type HTTPFetcher struct {
	client  *http.Client
	maxBody int64
}

func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = 5
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxDoc
	}

	maxRedirects := opts.MaxRedirects
	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: opts.Transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			setBrowserHeaders(req)
			return nil
		},
	}

	return &HTTPFetcher{client: client, maxBody: opts.MaxBodyBytes}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) Result {
	start := time.Now()
	res := f.fetch(ctx, url)
	res.Duration = time.Since(start)

	observe("http", res)
	return res
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) Result {
	res := Result{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		res.Err = eris.Wrap(err, "failed to create request").Error()
		return res
	}
	setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		res.Err = eris.Wrap(err, "request failed").Error()
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		res.Err = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		res.Err = eris.Wrap(err, "failed to read body").Error()
		return res
	}

	res.HTML = string(body)
	res.Success = true
	return res
}

func setBrowserHeaders(req *http.Request) {
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
}

func observe(renderer string, res Result) {
	outcome := "success"
	if !res.Success {
		outcome = "failure"
	}
	metrics.FetchTotal.WithLabelValues(renderer, outcome).Inc()
	metrics.FetchDuration.WithLabelValues(renderer).Observe(res.Duration.Seconds())

	if res.Success {
		logger.Debug("Fetched page",
			zap.String("url", res.URL),
			zap.Int("status", res.StatusCode),
			zap.Int("bytes", len(res.HTML)),
			zap.Duration("duration", res.Duration),
		)
		return
	}
	logger.Warn("Page fetch failed",
		zap.String("url", res.URL),
		zap.Int("status", res.StatusCode),
		zap.String("error", res.Err),
		zap.Duration("duration", res.Duration),
	)
}
