package validation

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Post("/ask", Middleware(Config{MaxQuestionLength: 50}), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(QuestionKey).(string))
	})
	return app
}

func post(t *testing.T, app *fiber.App, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestValidQuestionIsTrimmed(t *testing.T) {
	code, body := post(t, newApp(), `{"question": "  what is the fee structure  "}`)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "what is the fee structure", body)
}

func TestRejections(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		error string
	}{
		{"malformed json", `{"question":`, "Invalid request format - JSON parsing failed"},
		{"missing question", `{}`, "Question is required and must be a string"},
		{"non-string question", `{"question": 42}`, "Question is required and must be a string"},
		{"blank question", `{"question": "   "}`, "Question is required and must be a string"},
		{"too long", `{"question": "` + strings.Repeat("a", 51) + `"}`, "Question exceeds maximum length"},
		{"script tag", `{"question": "<script>alert(1)</script> fees"}`, "Invalid question content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := post(t, newApp(), tt.body)
			assert.Equal(t, fiber.StatusBadRequest, code)

			var env map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(body), &env))
			assert.Equal(t, false, env["success"])
			assert.Equal(t, tt.error, env["error"])
			assert.NotEmpty(t, env["answer"])
			assert.Equal(t, []interface{}{}, env["images"])
			assert.Equal(t, []interface{}{}, env["sources"])
		})
	}
}

func TestShortQuestionPassesByDefault(t *testing.T) {
	code, body := post(t, newApp(), `{"question": " hi "}`)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "hi", body)
}

func TestConfiguredMinimumLength(t *testing.T) {
	app := fiber.New()
	app.Post("/ask", Middleware(Config{MinQuestionLength: 5}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	code, body := post(t, app, `{"question": "fees"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body, "Question too short")
	assert.Contains(t, body, "at least 5 characters")
}

func TestRejectsNonJSONContentType(t *testing.T) {
	req := httptest.NewRequest("POST", "/ask", strings.NewReader("question=fees"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := newApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}
