package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegegpt/backend/internal/answer"
	"github.com/collegegpt/backend/internal/fetcher"
	"github.com/collegegpt/backend/internal/storage"
	"github.com/collegegpt/backend/internal/storage/models"
	"github.com/collegegpt/backend/internal/topic"
	"github.com/collegegpt/backend/pkg/textutil"
)

const baseURL = "https://cmrtc.ac.in/"

var testCanned = answer.Canned{College: "CMR Technical Campus", BaseURL: baseURL}

const placementsPage = `<html><body><main>
<h1>Companies Visited</h1>
<table>
  <tr><th>Company</th><th>Package</th></tr>
  <tr><td>Infosys Ltd</td><td>4 LPA</td></tr>
  <tr><td>TCS</td><td>3.6 LPA</td></tr>
</table>
</main></body></html>`

const feesPage = `<html><body><main>
<h1>Fee Structure</h1>
<p>The annual tuition fee for B.Tech programs is fixed by the state fee regulatory committee and is payable at the start of each academic year.</p>
<p>Hostel and transport charges are collected separately and are listed in the table published by the accounts section every year.</p>
</main></body></html>`

type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	fallback string
	calls    int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) fetcher.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	html, ok := f.pages[url]
	if !ok && f.fallback != "" {
		html, ok = f.fallback, true
	}
	if !ok {
		return fetcher.Result{URL: url, StatusCode: http.StatusNotFound, Err: "HTTP 404: Not Found"}
	}
	return fetcher.Result{URL: url, Success: true, StatusCode: http.StatusOK, HTML: html}
}

type fakeResolver map[topic.Topic][]string

func (r fakeResolver) Resolve(_ context.Context, t topic.Topic) []string {
	return append([]string{}, r[t]...)
}

type fakeGenerator struct {
	reply  string
	err    error
	calls  int
	inputs []answer.Input
}

func (g *fakeGenerator) Generate(_ context.Context, in answer.Input) (string, error) {
	g.calls++
	g.inputs = append(g.inputs, in)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGenerator) last() answer.Input {
	return g.inputs[len(g.inputs)-1]
}

type counted struct {
	Strategy
	calls int
}

func (c *counted) Attempt(ctx context.Context, question string) (*Answer, bool) {
	c.calls++
	return c.Strategy.Attempt(ctx, question)
}

type stub struct {
	name   string
	ans    *Answer
	panics bool
	calls  int
}

func (s *stub) Name() string { return s.name }

func (s *stub) Attempt(context.Context, string) (*Answer, bool) {
	s.calls++
	if s.panics {
		panic("boom")
	}
	return s.ans, s.ans != nil
}

func countedCascade(env *Env, cache storage.AnswerCache) []*counted {
	var out []*counted
	for _, s := range Cascade(env, cache, CachePolicy{Enabled: true, Threshold: 0.95, Window: 30 * time.Minute, Recent: 30,
		Bypass: []string{"companies", "placement", "question bank", "result"}}, time.Second) {
		out = append(out, &counted{Strategy: s})
	}
	return out
}

func asStrategies(cs []*counted) []Strategy {
	out := make([]Strategy, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

func TestAskStopsAtFirstAnswer(t *testing.T) {
	first := &stub{name: "first"}
	second := &stub{name: "second", ans: &Answer{Text: "from second", Success: true}}
	third := &stub{name: "third", ans: &Answer{Text: "from third", Success: true}}

	env := NewEngine(testCanned, []Strategy{first, second, third}).Ask(context.Background(), "  anything  ")

	assert.Equal(t, "from second", env.Answer)
	assert.Equal(t, "second", env.Strategy)
	assert.Equal(t, []int{1, 1, 0}, []int{first.calls, second.calls, third.calls})
	assert.NotNil(t, env.Images)
	assert.NotNil(t, env.Sources)
}

func TestAskRecoversFromStrategyPanic(t *testing.T) {
	broken := &stub{name: "broken", panics: true}
	next := &stub{name: "next", ans: &Answer{Text: "still here", Success: true}}

	env := NewEngine(testCanned, []Strategy{broken, next}).Ask(context.Background(), "fees")

	assert.Equal(t, "still here", env.Answer)
	assert.Equal(t, 1, broken.calls)
}

func TestAskWithoutAnyAnswerApologises(t *testing.T) {
	env := NewEngine(testCanned, []Strategy{&stub{name: "empty"}}).Ask(context.Background(), "fees")

	assert.False(t, env.Success)
	assert.Equal(t, "apology", env.Strategy)
	assert.Contains(t, env.Answer, baseURL)
	assert.Equal(t, []string{baseURL}, env.Sources)
}

func TestAskIgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var seen error
	s := strategyFunc(func(ctx context.Context, _ string) (*Answer, bool) {
		seen = ctx.Err()
		return &Answer{Text: "ok", Success: true}, true
	})

	NewEngine(testCanned, []Strategy{s}).Ask(ctx, "fees")
	assert.NoError(t, seen)
}

type strategyFunc func(ctx context.Context, question string) (*Answer, bool)

func (f strategyFunc) Name() string { return "func" }

func (f strategyFunc) Attempt(ctx context.Context, question string) (*Answer, bool) {
	return f(ctx, question)
}

func TestRobustAnswerSkipsLaterStages(t *testing.T) {
	pageURL := "https://cmrtc.ac.in/t-p-cell/companies-visited/"
	gen := &fakeGenerator{reply: "## Companies\n- Infosys Ltd\n- TCS"}
	fetch := &fakeFetcher{pages: map[string]string{pageURL: placementsPage}}
	env := &Env{
		Resolver:  fakeResolver{topic.Placements: {pageURL}},
		Fetcher:   fetch,
		Generator: gen,
		Canned:    testCanned,
	}
	store := storage.NewMemory(10)
	stages := countedCascade(env, store)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	question := "which companies visited for placements"
	got := NewEngine(testCanned, asStrategies(stages), WithStore(store, time.Second), WithClock(func() time.Time { return now })).
		Ask(context.Background(), question)

	assert.True(t, got.Success)
	assert.Equal(t, "robust", got.Strategy)
	assert.Equal(t, "placements", got.Topic)
	assert.Equal(t, 1, got.URLsScraped)
	assert.Equal(t, []string{pageURL}, got.Sources)
	assert.False(t, got.Cached)

	calls := make([]int, len(stages))
	for i, s := range stages {
		calls[i] = s.calls
	}
	assert.Equal(t, []int{1, 1, 0, 0, 0, 0}, calls)

	require.Equal(t, 1, gen.calls)
	in := gen.last()
	assert.True(t, in.Live)
	assert.Contains(t, in.Content, "Infosys Ltd | 4 LPA")
	assert.Contains(t, in.Facts, "COMPANIES IDENTIFIED")
	assert.Contains(t, in.Facts, "Infosys Ltd")

	cached, err := store.RecentAnswers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, textutil.Normalize(question), cached[0].NormalizedQuestion)
	assert.Equal(t, textutil.Hash(textutil.Normalize(question)), cached[0].SimilarityHash)
	assert.Equal(t, "robust", cached[0].Strategy)
	assert.Equal(t, "placements", cached[0].Topic)
	assert.Equal(t, now, cached[0].CreatedAt)
}

func TestScenarioAllTopicPagesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/t-p-cell/about-t-p-cell/", srv.URL + "/t-p-cell/companies-visited/"}
	store := storage.NewMemory(10)
	require.NoError(t, store.SaveTopicURLs(context.Background(), map[string][]string{"placements": urls}))

	gen := &fakeGenerator{reply: "unused"}
	env := &Env{
		Resolver:  topic.NewResolver(store, baseURL, time.Second),
		Fetcher:   fetcher.NewHTTPFetcher(fetcher.Options{Timeout: 5 * time.Second}),
		Generator: gen,
		Canned:    testCanned,
	}
	stages := countedCascade(env, store)

	got := NewEngine(testCanned, asStrategies(stages)).Ask(context.Background(), "which companies visited for placements")

	assert.False(t, got.Success)
	assert.Equal(t, "dynamic", got.Strategy)
	assert.Equal(t, "placements", got.Topic)
	assert.Contains(t, got.Answer, baseURL)
	assert.Contains(t, got.Answer, urls[0])
	assert.Equal(t, append([]string{baseURL}, urls...), got.Sources)
	assert.Zero(t, gen.calls)
	assert.Zero(t, stages[3].calls)
}

func TestScenarioUnroutedQuestion(t *testing.T) {
	fetch := &fakeFetcher{}
	env := &Env{Resolver: fakeResolver{}, Fetcher: fetch, Generator: &fakeGenerator{}, Canned: testCanned}

	got := NewEngine(testCanned, Cascade(env, nil, CachePolicy{}, 0)).Ask(context.Background(), "hi")

	assert.True(t, got.Success)
	assert.Equal(t, "dynamic", got.Strategy)
	assert.Empty(t, got.Topic)
	for _, category := range []string{"Placements", "Question Banks", "Results", "Notifications", "Faculty", "Fees"} {
		assert.Contains(t, got.Answer, category)
	}
	assert.Zero(t, fetch.calls)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"topic"`)
}

func TestUnconfiguredTopicNamesTopic(t *testing.T) {
	env := &Env{Resolver: fakeResolver{}, Fetcher: &fakeFetcher{}, Generator: &fakeGenerator{}, Canned: testCanned}

	got := NewEngine(testCanned, Cascade(env, nil, CachePolicy{}, 0)).Ask(context.Background(), "latest circular")

	assert.True(t, got.Success)
	assert.Equal(t, "dynamic", got.Strategy)
	assert.Equal(t, "notifications", got.Topic)
	assert.Contains(t, got.Answer, "notifications")
	assert.Equal(t, []string{baseURL}, got.Sources)
}

func TestGenerationFailureFallsBackToCannedAnswer(t *testing.T) {
	pageURL := "https://cmrtc.ac.in/academics/fee-structure/"
	gen := &fakeGenerator{err: errors.New("quota exceeded for this project")}
	env := &Env{
		Resolver:  fakeResolver{topic.Fees: {pageURL}},
		Fetcher:   &fakeFetcher{pages: map[string]string{pageURL: feesPage}},
		Generator: gen,
		Canned:    testCanned,
	}
	store := storage.NewMemory(10)

	got := NewEngine(testCanned, Cascade(env, nil, CachePolicy{}, 0), WithStore(store, time.Second)).
		Ask(context.Background(), "what is the fee structure")

	assert.False(t, got.Success)
	assert.Equal(t, "dynamic", got.Strategy)
	assert.Equal(t, "fees", got.Topic)
	assert.Contains(t, got.Answer, "Fee")
	assert.Equal(t, 2, gen.calls)

	cached, err := store.RecentAnswers(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestOnlyRobustAndDynamicAnswersAreCacheable(t *testing.T) {
	pageURL := "https://cmrtc.ac.in/academics/fee-structure/"
	env := &Env{
		Resolver:  fakeResolver{topic.Fees: {pageURL}},
		Fetcher:   &fakeFetcher{pages: map[string]string{pageURL: feesPage}},
		Generator: &fakeGenerator{reply: "## Fees\nPaid yearly."},
		Canned:    testCanned,
	}

	tests := []struct {
		stage     Strategy
		cacheable bool
	}{
		{NewRobust(env), true},
		{NewDynamic(env), true},
		{NewStructured(env), false},
	}

	for _, tt := range tests {
		t.Run(tt.stage.Name(), func(t *testing.T) {
			ans, ok := tt.stage.Attempt(context.Background(), "what is the fee structure")
			require.True(t, ok)
			assert.True(t, ans.Success)
			assert.Equal(t, tt.cacheable, ans.Cacheable)
		})
	}

	store := storage.NewMemory(10)
	got := NewEngine(testCanned, []Strategy{NewStructured(env)}, WithStore(store, time.Second)).
		Ask(context.Background(), "what is the fee structure")
	assert.Equal(t, "structured", got.Strategy)

	cached, err := store.RecentAnswers(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestEmptyExtractionEscalatesToTargetedPage(t *testing.T) {
	gen := &fakeGenerator{reply: "## Fees\nSee the overview."}
	env := &Env{
		Resolver:  fakeResolver{topic.Fees: {"https://cmrtc.ac.in/academics/fee-structure/"}},
		Fetcher:   &fakeFetcher{fallback: "<html><body></body></html>"},
		Generator: gen,
		Canned:    testCanned,
	}
	stages := countedCascade(env, nil)

	got := NewEngine(testCanned, asStrategies(stages)).Ask(context.Background(), "what is the fee structure")

	assert.True(t, got.Success)
	assert.Equal(t, "targeted", got.Strategy)
	assert.Equal(t, "fees", got.Topic)
	assert.Zero(t, got.URLsScraped)
	assert.Equal(t, []string{"https://cmrtc.ac.in/academics/fee-structure/"}, got.Sources)
	assert.Zero(t, stages[5].calls)

	require.Equal(t, 1, gen.calls)
	assert.False(t, gen.last().Live)
	assert.Contains(t, gen.last().Content, "Fee components")
}

func TestTargetedPageWithoutRoutedTopic(t *testing.T) {
	pageURL := "https://cmrtc.ac.in/administration/about-college/"
	gen := &fakeGenerator{reply: "CMR Technical Campus was established in 2009."}
	env := &Env{
		Fetcher:   &fakeFetcher{pages: map[string]string{pageURL: feesPage}},
		Generator: gen,
		Canned:    testCanned,
	}

	got := NewEngine(testCanned, []Strategy{NewTargeted(env)}).Ask(context.Background(), "tell me about the college history")

	assert.True(t, got.Success)
	assert.Equal(t, "targeted", got.Strategy)
	assert.Empty(t, got.Topic)
	assert.Equal(t, 1, got.URLsScraped)
	assert.Equal(t, []string{pageURL}, got.Sources)
	assert.Equal(t, "About College", gen.last().Topic)
	assert.True(t, gen.last().Live)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"topic"`)
}

func TestStaticStageReadsGeneralPages(t *testing.T) {
	gen := &fakeGenerator{reply: "CMR Technical Campus overview"}
	fetch := &fakeFetcher{pages: map[string]string{
		"https://cmrtc.ac.in/academics/fee-structure/": feesPage,
	}}
	env := &Env{Fetcher: fetch, Generator: gen, Canned: testCanned}

	got := NewEngine(testCanned, []Strategy{NewStatic(env)}).Ask(context.Background(), "tell me everything")

	assert.True(t, got.Success)
	assert.Equal(t, "static", got.Strategy)
	assert.Equal(t, []string{"https://cmrtc.ac.in/academics/fee-structure/"}, got.Sources)
	assert.Equal(t, len(topic.GeneralPages(baseURL)), fetch.calls)
	assert.Contains(t, gen.last().Content, "--- Content from https://cmrtc.ac.in/academics/fee-structure/ ---")
	assert.True(t, gen.last().Live)
}

func TestStaticStageApologisesWhenGenerationFails(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("network unreachable")}
	env := &Env{Fetcher: &fakeFetcher{}, Generator: gen, Canned: testCanned}

	got := NewEngine(testCanned, []Strategy{NewStatic(env)}).Ask(context.Background(), "tell me everything")

	assert.False(t, got.Success)
	assert.Equal(t, "static", got.Strategy)
	assert.Equal(t, testCanned.Apology("tell me everything"), got.Answer)
	assert.Contains(t, gen.last().Content, "ACADEMIC PROGRAMS")
	assert.False(t, gen.last().Live)
}

func TestCacheStrategy(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	policy := CachePolicy{Enabled: true, Threshold: 0.95, Window: 30 * time.Minute, Recent: 30,
		Bypass: []string{"companies", "placement", "question bank", "result"}}

	seed := func(t *testing.T, question string, age time.Duration) *storage.Memory {
		store := storage.NewMemory(10)
		require.NoError(t, store.SaveAnswer(context.Background(), models.CacheEntry{
			ID:                 "a1",
			NormalizedQuestion: textutil.Normalize(question),
			AnswerHTML:         "## Fee Structure\nTuition is listed on the website.",
			SourceURLs:         []string{"https://cmrtc.ac.in/academics/fee-structure/"},
			CreatedAt:          now.Add(-age),
		}))
		return store
	}

	t.Run("recent near duplicate is reused", func(t *testing.T) {
		c := NewCacheStrategy(seed(t, "what is the fee structure", 5*time.Minute), policy, baseURL, time.Second)
		c.now = func() time.Time { return now }

		ans, ok := c.Attempt(context.Background(), "What is the fee structure?")
		require.True(t, ok)
		assert.True(t, ans.Cached)
		assert.True(t, ans.Success)
		assert.Contains(t, ans.Text, "Tuition")
		assert.Equal(t, []string{"https://cmrtc.ac.in/academics/fee-structure/"}, ans.Sources)
	})

	t.Run("stale entry is ignored", func(t *testing.T) {
		c := NewCacheStrategy(seed(t, "what is the fee structure", 45*time.Minute), policy, baseURL, time.Second)
		c.now = func() time.Time { return now }

		_, ok := c.Attempt(context.Background(), "what is the fee structure")
		assert.False(t, ok)
	})

	t.Run("fresh-data questions bypass the cache", func(t *testing.T) {
		c := NewCacheStrategy(seed(t, "latest exam result", time.Minute), policy, baseURL, time.Second)
		c.now = func() time.Time { return now }

		_, ok := c.Attempt(context.Background(), "latest exam result")
		assert.False(t, ok)
	})

	t.Run("disabled policy", func(t *testing.T) {
		disabled := policy
		disabled.Enabled = false
		c := NewCacheStrategy(seed(t, "what is the fee structure", time.Minute), disabled, baseURL, time.Second)
		c.now = func() time.Time { return now }

		_, ok := c.Attempt(context.Background(), "what is the fee structure")
		assert.False(t, ok)
	})

	t.Run("unrelated question misses", func(t *testing.T) {
		c := NewCacheStrategy(seed(t, "what is the fee structure", time.Minute), policy, baseURL, time.Second)
		c.now = func() time.Time { return now }

		_, ok := c.Attempt(context.Background(), "who is the director")
		assert.False(t, ok)
	})
}

func TestCachedAnswerEnvelope(t *testing.T) {
	store := storage.NewMemory(10)
	require.NoError(t, store.SaveAnswer(context.Background(), models.CacheEntry{
		NormalizedQuestion: textutil.Normalize("who is the director"),
		CreatedAt:          time.Now(),
	}))
	c := NewCacheStrategy(store, CachePolicy{Enabled: true, Threshold: 0.95, Window: time.Hour, Recent: 5}, baseURL, time.Second)
	later := &stub{name: "later", ans: &Answer{Text: "fresh"}}

	got := NewEngine(testCanned, []Strategy{c, later}).Ask(context.Background(), "who is the director")

	assert.True(t, got.Cached)
	assert.Equal(t, "cache", got.Strategy)
	assert.Equal(t, missingCachedAnswer, got.Answer)
	assert.Equal(t, []string{baseURL}, got.Sources)
	assert.Zero(t, later.calls)
}

func TestCachePolicyFromConfigBypass(t *testing.T) {
	p := CachePolicy{Bypass: []string{"Question Bank"}}
	assert.True(t, p.Bypassed("cse question bank 2023"))
	assert.False(t, p.Bypassed("cse syllabus"))
}
