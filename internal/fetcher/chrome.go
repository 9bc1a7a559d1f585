package fetcher

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// ChromeFetcher renders pages in a shared headless browser, for sites that
// build their content with scripts.
type ChromeFetcher struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	timeout       time.Duration
	waitTime      time.Duration
}

func NewChromeFetcher(opts Options, waitTime time.Duration) *ChromeFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &ChromeFetcher{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		timeout:       opts.Timeout,
		waitTime:      waitTime,
	}
}

func (c *ChromeFetcher) Close() {
	c.browserCancel()
	c.allocCancel()
}

// Fetch ignores ctx cancellation beyond its own timeout; tabs are scoped to the
// shared browser context.
func (c *ChromeFetcher) Fetch(_ context.Context, url string) Result {
	start := time.Now()
	res := Result{URL: url}

	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, c.timeout)
	defer timeoutCancel()

	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if c.waitTime > 0 {
		tasks = append(tasks, chromedp.Sleep(c.waitTime))
	}

	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(timeoutCtx, tasks); err != nil {
		res.Err = eris.Wrap(err, "render failed").Error()
	} else {
		res.HTML = html
		res.StatusCode = 200
		res.Success = true
	}

	res.Duration = time.Since(start)
	observe("chrome", res)
	return res
}
