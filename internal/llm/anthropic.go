package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/metrics"
	"github.com/collegegpt/backend/pkg/config"
	"github.com/collegegpt/backend/pkg/logger"
)

type AnthropicClient struct {
	client sdk.Client
	guard
}

func NewAnthropicClient(cfg config.LLMConfig) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	logger.Info("LLM client initialized",
		zap.String("provider", "anthropic"),
		zap.String("model", cfg.Model),
	)

	return &AnthropicClient{
		client: sdk.NewClient(opts...),
		guard:  newGuard("anthropic", cfg),
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, req Request) (string, error) {
	req = c.defaults(req)

	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt))},
		Temperature: sdk.Float(float64(req.Temperature)),
	}
	if req.SystemInstruction != "" {
		params.System = []sdk.TextBlockParam{{Text: req.SystemInstruction}}
	}

	return c.run(ctx, func(ctx context.Context) (string, error) {
		msg, err := c.client.Messages.New(ctx, params)
		if err != nil {
			return "", eris.Wrap(err, "anthropic: create message")
		}

		metrics.LLMTokensUsed.WithLabelValues(c.model, "prompt").Add(float64(msg.Usage.InputTokens))
		metrics.LLMTokensUsed.WithLabelValues(c.model, "completion").Add(float64(msg.Usage.OutputTokens))

		var b strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		return b.String(), nil
	})
}
