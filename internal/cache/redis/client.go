package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/storage"
	"github.com/collegegpt/backend/internal/storage/models"
	"github.com/collegegpt/backend/pkg/logger"
)

const (
	recentAnswersKey = "answers:recent"
	topicURLsKey     = "config:" + models.TopicURLsDocument
)

// Client stores cached answers in a capped list, newest at the head, and
// the topic URL document as a single JSON value.
type Client struct {
	client *redis.Client
	max    int64
}

func NewClient(host string, port int, password string, db int, maxAnswers int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to connect to redis")
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return New(client, maxAnswers), nil
}

// New wraps an existing connection.
func New(client *redis.Client, maxAnswers int) *Client {
	if maxAnswers <= 0 {
		maxAnswers = 100
	}
	return &Client{client: client, max: int64(maxAnswers)}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SaveAnswer(ctx context.Context, entry models.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "failed to marshal cached answer")
	}

	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, recentAnswersKey, data)
	pipe.LTrim(ctx, recentAnswersKey, 0, c.max-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return eris.Wrap(err, "failed to push cached answer")
	}

	logger.Debug("Answer cached", zap.String("id", entry.ID))
	return nil
}

func (c *Client) RecentAnswers(ctx context.Context, limit int) ([]models.CacheEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	raw, err := c.client.LRange(ctx, recentAnswersKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to read cached answers")
	}

	entries := make([]models.CacheEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.CacheEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			logger.Warn("Skipping unreadable cached answer", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Client) LoadTopicURLs(ctx context.Context) (map[string][]string, error) {
	data, err := c.client.Get(ctx, topicURLsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to get topic urls")
	}

	var urls map[string][]string
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, eris.Wrap(err, "failed to unmarshal topic urls")
	}
	return urls, nil
}

func (c *Client) SaveTopicURLs(ctx context.Context, urls map[string][]string) error {
	data, err := json.Marshal(urls)
	if err != nil {
		return eris.Wrap(err, "failed to marshal topic urls")
	}
	if err := c.client.Set(ctx, topicURLsKey, data, 0).Err(); err != nil {
		return eris.Wrap(err, "failed to set topic urls")
	}
	return nil
}
