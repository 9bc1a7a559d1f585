package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuestionKey is the fiber.Ctx local holding the validated, trimmed question.
const QuestionKey = "question"

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MinQuestionLength int
	MaxQuestionLength int
	Logger            *zap.Logger
}

// Middleware validates chat requests of the form {"question": "..."} and
// answers invalid ones with a 400 envelope. Any non-blank question passes by
// default; short ones such as greetings are answered by the engine.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MinQuestionLength <= 0 {
		cfg.MinQuestionLength = 1
	}
	if cfg.MaxQuestionLength <= 0 {
		cfg.MaxQuestionLength = 2000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if contentType := c.Get(fiber.HeaderContentType); contentType != "" &&
			!strings.Contains(contentType, fiber.MIMEApplicationJSON) {
			return reject(c, fiber.StatusUnsupportedMediaType, "Unsupported content type",
				"**Request Error**\n\nPlease send your question as JSON.")
		}

		var req map[string]interface{}
		if err := c.BodyParser(&req); err != nil {
			cfg.Logger.Debug("Invalid chat request body", zap.Error(err))
			return reject(c, fiber.StatusBadRequest, "Invalid request format - JSON parsing failed",
				"**Request Error**\n\nThere was an issue with your request format. Please try again.")
		}

		question, ok := req["question"].(string)
		question = sanitizeString(question)
		if !ok || question == "" {
			return reject(c, fiber.StatusBadRequest, "Question is required and must be a string",
				"**Missing Question**\n\nPlease provide a question about the college.")
		}

		if n := utf8.RuneCountInString(question); n < cfg.MinQuestionLength {
			return reject(c, fiber.StatusBadRequest, "Question too short",
				fmt.Sprintf("**Question Too Short**\n\nPlease provide a more detailed question (at least %d characters).", cfg.MinQuestionLength))
		}

		if utf8.RuneCountInString(question) > cfg.MaxQuestionLength {
			return reject(c, fiber.StatusBadRequest, "Question exceeds maximum length",
				"**Question Too Long**\n\nPlease shorten your question and try again.")
		}

		if containsXSS(question) {
			cfg.Logger.Warn("Potential XSS attempt",
				zap.String("ip", c.IP()),
				zap.String("question", question),
			)
			return reject(c, fiber.StatusBadRequest, "Invalid question content",
				"**Request Error**\n\nYour question contains content that can't be processed.")
		}

		c.Locals(QuestionKey, question)
		return c.Next()
	}
}

func reject(c *fiber.Ctx, status int, msg, answer string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
		"answer":  answer,
		"images":  []string{},
		"sources": []string{},
	})
}

func containsXSS(input string) bool {
	return xssPattern.MatchString(input)
}

func sanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
