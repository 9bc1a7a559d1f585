package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegegpt/backend/internal/answer"
	"github.com/collegegpt/backend/internal/fetcher"
	"github.com/collegegpt/backend/internal/middleware/validation"
	"github.com/collegegpt/backend/internal/query"
	"github.com/collegegpt/backend/internal/topic"
)

var canned = answer.Canned{College: "CMR Technical Campus", BaseURL: "https://cmrtc.ac.in/"}

type fakeAsker struct {
	env      query.Envelope
	panics   bool
	question string
}

func (f *fakeAsker) Ask(_ context.Context, question string) query.Envelope {
	f.question = question
	if f.panics {
		panic("engine exploded")
	}
	return f.env
}

func newChatApp(asker Asker) *fiber.App {
	app := fiber.New()
	h := NewQueryHandler(asker, canned)
	app.Post("/api/v1/student-gpt", validation.Middleware(validation.Config{}), h.HandleQuestion)
	return app
}

func postQuestion(t *testing.T, app *fiber.App, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/student-gpt", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestHandleQuestionReturnsEnvelope(t *testing.T) {
	asker := &fakeAsker{env: query.Envelope{
		Success:     false,
		Answer:      "I tried to get the latest placements information",
		Images:      []string{},
		Sources:     []string{"https://cmrtc.ac.in/"},
		Topic:       "placements",
		Strategy:    "dynamic",
		URLsScraped: 0,
	}}

	code, body := postQuestion(t, newChatApp(asker), `{"question": " which companies visited for placements "}`)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "which companies visited for placements", asker.question)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "placements", body["topic"])
	assert.Equal(t, []interface{}{"https://cmrtc.ac.in/"}, body["sources"])
	assert.NotContains(t, body, "urlsScraped")
}

type countingFetcher struct {
	calls int
}

func (f *countingFetcher) Fetch(_ context.Context, url string) fetcher.Result {
	f.calls++
	return fetcher.Result{URL: url, Err: "offline"}
}

type countingGenerator struct {
	calls int
}

func (g *countingGenerator) Generate(context.Context, answer.Input) (string, error) {
	g.calls++
	return "unused", nil
}

func TestGreetingGetsTopicGuidance(t *testing.T) {
	fetch := &countingFetcher{}
	gen := &countingGenerator{}
	env := &query.Env{Resolver: staticResolver{}, Fetcher: fetch, Generator: gen, Canned: canned}
	engine := query.NewEngine(canned, query.Cascade(env, nil, query.CachePolicy{}, 0))

	code, body := postQuestion(t, newChatApp(engine), `{"question": "hi"}`)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "dynamic", body["strategy"])
	assert.NotContains(t, body, "topic")
	for _, category := range []string{"Placements", "Question Banks", "Results", "Notifications", "Faculty", "Fees"} {
		assert.Contains(t, body["answer"], category)
	}
	assert.Equal(t, []interface{}{"https://cmrtc.ac.in/"}, body["sources"])
	assert.Zero(t, fetch.calls)
	assert.Zero(t, gen.calls)
}

func TestHandleQuestionRejectsBlankQuestion(t *testing.T) {
	asker := &fakeAsker{}

	code, body := postQuestion(t, newChatApp(asker), `{"question": "   "}`)

	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Question is required and must be a string", body["error"])
	assert.Empty(t, asker.question)
}

func TestHandleQuestionRecoversWith500(t *testing.T) {
	code, body := postQuestion(t, newChatApp(&fakeAsker{panics: true}), `{"question": "what is the fee structure"}`)

	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["answer"], "Service Temporarily Unavailable")
	assert.Contains(t, body["error"], "engine exploded")
	assert.Equal(t, []interface{}{"https://cmrtc.ac.in/"}, body["sources"])
}

func TestHandleQuestionWithoutValidationMiddleware(t *testing.T) {
	asker := &fakeAsker{env: query.Envelope{Success: true, Answer: "ok", Images: []string{}, Sources: []string{}}}
	app := fiber.New()
	app.Post("/ask", NewQueryHandler(asker, canned).HandleQuestion)

	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`{"question": "fees"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "fees", asker.question)
}

type staticResolver struct{}

func (staticResolver) Resolve(_ context.Context, t topic.Topic) []string {
	return topic.StaticURLs("https://cmrtc.ac.in/")[t]
}

func TestListTopics(t *testing.T) {
	app := fiber.New()
	app.Get("/topics", NewTopicsHandler(staticResolver{}).ListTopics)

	resp, err := app.Test(httptest.NewRequest("GET", "/topics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Topics []TopicInfo `json:"topics"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Topics, len(topic.All()))
	assert.Equal(t, "faculty", body.Topics[0].Topic)
	assert.Equal(t, "question bank", body.Topics[5].Label)
	assert.Equal(t, []string{"https://cmrtc.ac.in/academics/fee-structure/"}, body.Topics[4].URLs)
}
