package llm

import (
	"context"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/metrics"
	"github.com/collegegpt/backend/pkg/config"
	"github.com/collegegpt/backend/pkg/logger"
)

// OpenAIClient talks to OpenAI or any OpenAI-compatible endpoint, such as
// the Gemini compatibility gateway, selected through cfg.BaseURL.
type OpenAIClient struct {
	client *openai.Client
	guard
}

func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	logger.Info("LLM client initialized",
		zap.String("provider", "openai"),
		zap.String("model", cfg.Model),
		zap.String("base_url", oc.BaseURL),
	)

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		guard:  newGuard("openai", cfg),
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	req = c.defaults(req)

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		},
	}

	return c.run(ctx, func(ctx context.Context) (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		})
		if err != nil {
			return "", eris.Wrap(err, "failed to create completion")
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}

		metrics.LLMTokensUsed.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		logger.Debug("LLM completion generated",
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)

		return resp.Choices[0].Message.Content, nil
	})
}
