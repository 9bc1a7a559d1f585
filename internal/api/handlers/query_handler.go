package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/answer"
	"github.com/collegegpt/backend/internal/middleware/validation"
	"github.com/collegegpt/backend/internal/query"
	"github.com/collegegpt/backend/pkg/logger"
)

type Asker interface {
	Ask(ctx context.Context, question string) query.Envelope
}

type QueryHandler struct {
	engine Asker
	canned answer.Canned
}

func NewQueryHandler(engine Asker, canned answer.Canned) *QueryHandler {
	return &QueryHandler{
		engine: engine,
		canned: canned,
	}
}

// HandleQuestion answers POST /api/v1/student-gpt. The envelope is always
// returned with 200 once the question is valid; only an unexpected panic
// produces a 500.
func (h *QueryHandler) HandleQuestion(c *fiber.Ctx) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Unexpected error while answering question",
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			err = c.Status(fiber.StatusInternalServerError).JSON(query.Envelope{
				Success: false,
				Error:   fmt.Sprintf("Internal server error: %v", rec),
				Answer:  h.canned.ServiceUnavailable(),
				Images:  []string{},
				Sources: []string{h.canned.BaseURL},
			})
		}
	}()

	question, _ := c.Locals(validation.QuestionKey).(string)
	if question == "" {
		var req struct {
			Question string `json:"question"`
		}
		if err := c.BodyParser(&req); err != nil || req.Question == "" {
			return c.Status(fiber.StatusBadRequest).JSON(query.Envelope{
				Success: false,
				Error:   "Question is required and must be a string",
				Answer:  "**Missing Question**\n\nPlease provide a question about the college.",
				Images:  []string{},
				Sources: []string{},
			})
		}
		question = req.Question
	}

	env := h.engine.Ask(c.UserContext(), question)
	return c.JSON(env)
}
