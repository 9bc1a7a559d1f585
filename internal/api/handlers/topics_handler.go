package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/collegegpt/backend/internal/query"
	"github.com/collegegpt/backend/internal/topic"
)

type TopicInfo struct {
	Topic    string   `json:"topic"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
	URLs     []string `json:"urls"`
}

type TopicsHandler struct {
	resolver query.URLResolver
}

func NewTopicsHandler(resolver query.URLResolver) *TopicsHandler {
	return &TopicsHandler{resolver: resolver}
}

// ListTopics returns every routed topic in match order with its keywords
// and the pages it currently resolves to.
func (h *TopicsHandler) ListTopics(c *fiber.Ctx) error {
	entries := topic.Entries()
	out := make([]TopicInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, TopicInfo{
			Topic:    e.Topic.String(),
			Label:    e.Topic.Label(),
			Keywords: e.Keywords,
			URLs:     h.resolver.Resolve(c.UserContext(), e.Topic),
		})
	}

	return c.JSON(fiber.Map{
		"topics": out,
	})
}
