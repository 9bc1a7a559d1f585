// Package answer turns formatted college content into a user-facing answer,
// and owns every canned reply used when live generation is not possible.
package answer

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/llm"
	"github.com/collegegpt/backend/pkg/logger"
)

type Generator struct {
	llm         llm.TextGenerator
	college     string
	temperature float32
	maxTokens   int
	now         func() time.Time
}

type Option func(*Generator)

func WithSampling(temperature float32, maxTokens int) Option {
	return func(g *Generator) {
		g.temperature = temperature
		g.maxTokens = maxTokens
	}
}

func NewGenerator(gen llm.TextGenerator, college string, opts ...Option) *Generator {
	g := &Generator{llm: gen, college: college, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate asks the model for an answer. Blank output is reported as
// llm.ErrEmptyResponse so callers can fall back.
func (g *Generator) Generate(ctx context.Context, in Input) (string, error) {
	if g.llm == nil {
		return "", eris.New("no language model configured")
	}

	start := time.Now()
	text, err := g.llm.Generate(ctx, llm.Request{
		SystemInstruction: g.systemInstruction(in),
		Prompt:            g.prompt(in),
		Temperature:       g.temperature,
		MaxTokens:         g.maxTokens,
	})
	if err != nil {
		return "", eris.Wrap(err, "failed to generate answer")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}

	logger.Debug("Answer generated",
		zap.String("topic", in.Topic),
		zap.Int("content_length", len(in.Content)),
		zap.Int("answer_length", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}
