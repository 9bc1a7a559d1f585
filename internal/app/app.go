// Package app assembles the question engine and its stores from
// configuration, for the API server and the CLI.
package app

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/answer"
	"github.com/collegegpt/backend/internal/cache/redis"
	"github.com/collegegpt/backend/internal/fetcher"
	"github.com/collegegpt/backend/internal/llm"
	"github.com/collegegpt/backend/internal/query"
	"github.com/collegegpt/backend/internal/storage"
	"github.com/collegegpt/backend/internal/storage/mongo"
	"github.com/collegegpt/backend/internal/storage/sqlite"
	"github.com/collegegpt/backend/internal/topic"
	"github.com/collegegpt/backend/pkg/config"
	"github.com/collegegpt/backend/pkg/logger"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverRedis  = "redis"

	chromeWaitTime  = 2 * time.Second
	redisMaxAnswers = 200
)

type store interface {
	storage.TopicURLStore
	storage.AnswerCache
}

type App struct {
	Config   *config.Config
	Canned   answer.Canned
	Topics   storage.TopicURLStore
	Cache    storage.AnswerCache
	Resolver *topic.Resolver
	Fetcher  fetcher.Fetcher
	Engine   *query.Engine

	stores  map[string]store
	closers []func()
}

// New opens the configured stores and builds the engine. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config: cfg,
		Canned: answer.Canned{College: cfg.College.Name, BaseURL: cfg.College.BaseURL},
		stores: make(map[string]store),
	}

	topics, err := a.open(ctx, cfg.Storage.Topics)
	if err != nil {
		a.Close()
		return nil, eris.Wrap(err, "failed to open topic store")
	}
	cache, err := a.open(ctx, cfg.Storage.Cache)
	if err != nil {
		a.Close()
		return nil, eris.Wrap(err, "failed to open answer cache")
	}
	a.Topics, a.Cache = topics, cache

	a.Resolver = topic.NewResolver(topics, cfg.College.BaseURL, cfg.Storage.Timeout())
	a.Fetcher = a.newFetcher()

	var gen llm.TextGenerator
	if g, err := llm.New(cfg.LLM); err != nil {
		logger.Warn("Language model unavailable, answers will use canned fallbacks", zap.Error(err))
	} else {
		gen = g
	}

	env := &query.Env{
		Resolver:    a.Resolver,
		Fetcher:     a.Fetcher,
		Generator:   answer.NewGenerator(gen, cfg.College.Name, answer.WithSampling(cfg.LLM.Temperature, cfg.LLM.MaxTokens)),
		Canned:      a.Canned,
		Concurrency: cfg.Fetcher.Concurrency,
	}
	strategies := query.Cascade(env, cache, query.PolicyFromConfig(cfg.Cache), cfg.Storage.Timeout())
	a.Engine = query.NewEngine(a.Canned, strategies, query.WithStore(cache, cfg.Storage.Timeout()))

	logger.Info("Question engine ready",
		zap.String("topics_store", cfg.Storage.Topics),
		zap.String("cache_store", cfg.Storage.Cache),
		zap.String("renderer", cfg.Fetcher.Renderer),
		zap.Strings("strategies", a.Engine.Strategies()),
	)
	return a, nil
}

// Close releases stores and the browser, in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// SQLite returns the SQLite store if either store uses it.
func (a *App) SQLite() (*sqlite.Client, bool) {
	c, ok := a.stores[DriverSQLite].(*sqlite.Client)
	return c, ok
}

func (a *App) open(ctx context.Context, driver string) (store, error) {
	if driver == "" {
		driver = DriverMemory
	}
	if s, ok := a.stores[driver]; ok {
		return s, nil
	}

	s, err := a.dial(ctx, driver)
	if err != nil {
		return nil, err
	}
	a.stores[driver] = s
	return s, nil
}

func (a *App) dial(ctx context.Context, driver string) (store, error) {
	cfg := a.Config

	switch driver {
	case DriverMemory:
		return storage.NewMemory(redisMaxAnswers), nil

	case DriverSQLite:
		client, err := sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		if err := client.InitSchema(); err != nil {
			return nil, err
		}
		return client, nil

	case DriverMongo:
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(ctx)
		})
		if err := client.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to ensure mongo indexes", zap.Error(err))
		}
		return client, nil

	case DriverRedis:
		client, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, redisMaxAnswers)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return client, nil
	}

	return nil, eris.Errorf("unknown storage driver %q", driver)
}

func (a *App) newFetcher() fetcher.Fetcher {
	opts := fetcher.Options{
		Timeout:      a.Config.Fetcher.Timeout(),
		MaxRedirects: a.Config.Fetcher.MaxRedirects,
		MaxBodyBytes: a.Config.Fetcher.MaxBodyBytes,
	}

	if a.Config.Fetcher.Renderer == "chrome" {
		cf := fetcher.NewChromeFetcher(opts, chromeWaitTime)
		a.closers = append(a.closers, cf.Close)
		return cf
	}
	return fetcher.NewHTTPFetcher(opts)
}

// SeedTopics writes the static URL table into the topic store.
func (a *App) SeedTopics(ctx context.Context) (map[string][]string, error) {
	urls := make(map[string][]string)
	for t, list := range a.Resolver.Static() {
		urls[t.String()] = list
	}
	if err := a.Topics.SaveTopicURLs(ctx, urls); err != nil {
		return nil, eris.Wrap(err, "failed to seed topic urls")
	}
	return urls, nil
}
