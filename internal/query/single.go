package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/answer"
	"github.com/collegegpt/backend/internal/extract"
	"github.com/collegegpt/backend/internal/fetcher"
	"github.com/collegegpt/backend/internal/topic"
	"github.com/collegegpt/backend/pkg/logger"
)

const (
	targetTextLimit  = 3000
	staticTextLimit  = 2000
	pageImageLimit   = 3
	minTargetTextLen = 50
)

// Targeted answers from the one page whose coarse keywords match the
// question. An unreadable page is replaced by a short canned overview. The
// envelope topic is the routed topic, if any, not the page name.
type Targeted struct {
	env *Env
}

func NewTargeted(env *Env) *Targeted {
	return &Targeted{env: env}
}

func (t *Targeted) Name() string {
	return "targeted"
}

func (t *Targeted) Attempt(ctx context.Context, question string) (*Answer, bool) {
	target, ok := topic.MatchTarget(question, t.env.Canned.BaseURL)
	if !ok {
		return nil, false
	}

	routed := topic.Match(question)
	in := answer.Input{
		Question: question,
		Topic:    target.Name,
		Sources:  []string{target.URL},
	}

	res := t.env.Fetcher.Fetch(ctx, target.URL)
	if page, ok := readable(res, targetTextLimit); ok && len(page.Text) >= minTargetTextLen {
		in.Content = fmt.Sprintf("Title: %s\n\nContent: %s", page.Title, page.Text)
		in.Images = page.Images
		in.Live = true
	} else {
		logger.Info("Targeted page unavailable, using overview",
			zap.String("target", target.Name),
			zap.String("url", target.URL),
			zap.String("error", res.Err),
		)
		in.Content = t.env.Canned.TargetFallback(target.Name)
	}

	text, err := t.env.Generator.Generate(ctx, in)
	if err != nil {
		logger.Warn("Targeted generation failed", zap.String("target", target.Name), zap.Error(err))
		return nil, false
	}

	scraped := 0
	if in.Live {
		scraped = 1
	}
	return &Answer{
		Text:        text,
		Images:      in.Images,
		Sources:     in.Sources,
		Topic:       routed.String(),
		URLsScraped: scraped,
		Success:     true,
	}, true
}

// Static answers from a fixed set of general college pages and is the
// last stage: it always answers, with an apology if generation fails.
type Static struct {
	env *Env
}

func NewStatic(env *Env) *Static {
	return &Static{env: env}
}

func (s *Static) Name() string {
	return "static"
}

func (s *Static) Attempt(ctx context.Context, question string) (*Answer, bool) {
	canned := s.env.Canned
	urls := topic.GeneralPages(canned.BaseURL)
	results := fetcher.FetchAll(ctx, s.env.Fetcher, urls, s.env.Concurrency)

	var content strings.Builder
	var sources []string
	var imageLists [][]string
	for _, res := range fetcher.Succeeded(results) {
		page, ok := readable(res, staticTextLimit)
		if !ok || page.Text == "" {
			continue
		}
		fmt.Fprintf(&content, "\n\n--- Content from %s ---\n%s", page.URL, page.Text)
		sources = append(sources, page.URL)
		imageLists = append(imageLists, page.Images)
	}

	in := answer.Input{
		Question: question,
		Content:  content.String(),
		Sources:  sources,
		Images:   uniqueImages(maxAnswerImages, imageLists...),
		Live:     len(sources) > 0,
	}
	if !in.Live {
		logger.Warn("No general page could be read, using college overview")
		in.Content = canned.StaticFallbackContent()
		in.Sources = []string{canned.BaseURL}
	}

	text, err := s.env.Generator.Generate(ctx, in)
	if err != nil {
		logger.Error("General-page generation failed", zap.Error(err))
		return &Answer{
			Text:    canned.Apology(question),
			Sources: []string{canned.BaseURL},
			Success: false,
		}, true
	}

	return &Answer{
		Text:        text,
		Images:      in.Images,
		Sources:     in.Sources,
		URLsScraped: len(sources),
		Success:     true,
	}, true
}

func readable(res fetcher.Result, maxText int) (extract.Page, bool) {
	if !res.Success {
		return extract.Page{}, false
	}
	page, err := extract.ReadPage(res.HTML, res.URL, maxText, pageImageLimit)
	if err != nil {
		logger.Debug("Failed to read page", zap.String("url", res.URL), zap.Error(err))
		return extract.Page{}, false
	}
	return page, true
}
