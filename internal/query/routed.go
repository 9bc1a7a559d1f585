package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/answer"
	"github.com/collegegpt/backend/internal/extract"
	"github.com/collegegpt/backend/internal/facts"
	"github.com/collegegpt/backend/internal/format"
	"github.com/collegegpt/backend/internal/llm"
	"github.com/collegegpt/backend/internal/topic"
	"github.com/collegegpt/backend/pkg/logger"
)

const maxAnswerImages = 10

// Routed answers from the pages configured for the question's topic, using
// one extractor. A guiding Routed also answers the cases where no live
// content can exist (no topic, no configured pages, every page unreachable,
// model failure) with canned guidance instead of deferring to later stages.
// Only robust and dynamic answers are offered to the cache.
type Routed struct {
	name      string
	extractor extract.Extractor
	guide     bool
	cache     bool
	env       *Env
}

func NewRobust(env *Env) *Routed {
	return &Routed{name: "robust", extractor: extract.NewRobust(), cache: true, env: env}
}

func NewDynamic(env *Env) *Routed {
	return &Routed{name: "dynamic", extractor: extract.NewDynamic(), guide: true, cache: true, env: env}
}

func NewStructured(env *Env) *Routed {
	return &Routed{name: "structured", extractor: extract.NewStructured(), env: env}
}

func (r *Routed) Name() string {
	return r.name
}

func (r *Routed) Attempt(ctx context.Context, question string) (*Answer, bool) {
	canned := r.env.Canned

	t := topic.Match(question)
	if t == topic.None {
		if !r.guide {
			return nil, false
		}
		return &Answer{
			Text:    canned.Guidance(question),
			Sources: []string{canned.BaseURL},
			Success: true,
		}, true
	}

	urls := r.env.Resolver.Resolve(ctx, t)
	if len(urls) == 0 {
		logger.Warn("No pages configured for topic", zap.String("stage", r.name), zap.String("topic", t.String()))
		if !r.guide {
			return nil, false
		}
		return &Answer{
			Text:    canned.NoSources(question, t),
			Sources: []string{canned.BaseURL},
			Topic:   t.String(),
			Success: true,
		}, true
	}

	pages, loaded := r.env.scrape(ctx, t, urls, r.extractor)
	if loaded == 0 {
		logger.Warn("Every topic page failed to load",
			zap.String("stage", r.name),
			zap.String("topic", t.String()),
			zap.Int("urls", len(urls)),
		)
		if !r.guide {
			return nil, false
		}
		return &Answer{
			Text:    canned.ScrapeFailed(question, t, urls),
			Sources: append([]string{canned.BaseURL}, urls...),
			Topic:   t.String(),
			Success: false,
		}, true
	}

	ok := successful(pages)
	if len(ok) == 0 {
		logger.Info("Pages loaded but nothing was extracted",
			zap.String("stage", r.name),
			zap.String("topic", t.String()),
			zap.Int("loaded", loaded),
		)
		return nil, false
	}

	in := answer.Input{
		Question: question,
		Topic:    t.Label(),
		Content:  format.Format(pages),
		Live:     true,
	}
	var imageLists [][]string
	for _, p := range ok {
		in.Sources = append(in.Sources, p.URL)
		imageLists = append(imageLists, p.Images)
	}
	in.Images = uniqueImages(maxAnswerImages, imageLists...)

	if t == topic.Placements {
		if names := facts.Companies(ok); len(names) > 0 {
			in.Facts = format.Companies(names)
		}
	}

	text, err := r.env.Generator.Generate(ctx, in)
	if err != nil {
		kind := llm.Classify(err)
		logger.Warn("Answer generation failed",
			zap.String("stage", r.name),
			zap.String("topic", t.String()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		if !r.guide {
			return nil, false
		}
		return &Answer{
			Text:    canned.GenerationFallback(question, kind),
			Sources: []string{canned.BaseURL},
			Topic:   t.String(),
			Success: false,
		}, true
	}

	return &Answer{
		Text:        text,
		Images:      in.Images,
		Sources:     in.Sources,
		Topic:       t.String(),
		URLsScraped: len(ok),
		Success:     true,
		Cacheable:   r.cache,
	}, true
}
