package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/storage"
	"github.com/collegegpt/backend/internal/storage/models"
	"github.com/collegegpt/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open database")
	}

	if _, err = db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "failed to enable WAL mode")
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS config_documents (
		name TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS answer_cache (
		id TEXT PRIMARY KEY,
		raw_question TEXT NOT NULL,
		normalized_question TEXT NOT NULL,
		similarity_hash TEXT,
		answer_html TEXT NOT NULL,
		source_urls TEXT,
		image_urls TEXT,
		topic TEXT,
		strategy TEXT,
		urls_scraped INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_answer_cache_created ON answer_cache(created_at);
	CREATE INDEX IF NOT EXISTS idx_answer_cache_hash ON answer_cache(similarity_hash);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return eris.Wrap(err, "failed to initialize schema")
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) LoadTopicURLs(ctx context.Context) (map[string][]string, error) {
	var body string
	err := c.db.QueryRowContext(ctx,
		`SELECT body FROM config_documents WHERE name = ?`, models.TopicURLsDocument,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to load topic urls")
	}

	var urls map[string][]string
	if err := json.Unmarshal([]byte(body), &urls); err != nil {
		return nil, eris.Wrap(err, "failed to decode topic urls")
	}
	return urls, nil
}

func (c *Client) SaveTopicURLs(ctx context.Context, urls map[string][]string) error {
	body, err := json.Marshal(urls)
	if err != nil {
		return eris.Wrap(err, "failed to encode topic urls")
	}

	query := `
		INSERT INTO config_documents (name, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`
	if _, err := c.db.ExecContext(ctx, query, models.TopicURLsDocument, string(body), time.Now().UnixMilli()); err != nil {
		return eris.Wrap(err, "failed to save topic urls")
	}

	logger.Info("Topic URLs saved", zap.Int("topics", len(urls)))
	return nil
}

func (c *Client) SaveAnswer(ctx context.Context, entry models.CacheEntry) error {
	sources, err := json.Marshal(entry.SourceURLs)
	if err != nil {
		return eris.Wrap(err, "failed to encode source urls")
	}
	images, err := json.Marshal(entry.ImageURLs)
	if err != nil {
		return eris.Wrap(err, "failed to encode image urls")
	}

	query := `
		INSERT INTO answer_cache (id, raw_question, normalized_question, similarity_hash, answer_html,
			source_urls, image_urls, topic, strategy, urls_scraped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = c.db.ExecContext(ctx, query,
		entry.ID,
		entry.Question,
		entry.NormalizedQuestion,
		entry.SimilarityHash,
		entry.AnswerHTML,
		string(sources),
		string(images),
		entry.Topic,
		entry.Strategy,
		entry.URLsScraped,
		entry.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return eris.Wrap(err, "failed to insert cached answer")
	}

	logger.Debug("Answer cached", zap.String("id", entry.ID), zap.String("topic", entry.Topic))
	return nil
}

func (c *Client) RecentAnswers(ctx context.Context, limit int) ([]models.CacheEntry, error) {
	query := `
		SELECT id, raw_question, normalized_question, similarity_hash, answer_html,
			source_urls, image_urls, topic, strategy, urls_scraped, created_at
		FROM answer_cache
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query cached answers")
	}
	defer rows.Close()

	var entries []models.CacheEntry
	for rows.Next() {
		var e models.CacheEntry
		var sources, images sql.NullString
		var hash, topic, strategy sql.NullString
		var createdAt int64

		if err := rows.Scan(
			&e.ID,
			&e.Question,
			&e.NormalizedQuestion,
			&hash,
			&e.AnswerHTML,
			&sources,
			&images,
			&topic,
			&strategy,
			&e.URLsScraped,
			&createdAt,
		); err != nil {
			return nil, eris.Wrap(err, "failed to scan cached answer")
		}

		e.SimilarityHash = hash.String
		e.Topic = topic.String
		e.Strategy = strategy.String
		e.CreatedAt = time.UnixMilli(createdAt)
		if sources.Valid {
			_ = json.Unmarshal([]byte(sources.String), &e.SourceURLs)
		}
		if images.Valid {
			_ = json.Unmarshal([]byte(images.String), &e.ImageURLs)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to iterate cached answers")
	}
	return entries, nil
}

// PurgeAnswersBefore deletes cached answers older than cutoff.
func (c *Client) PurgeAnswersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM answer_cache WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, eris.Wrap(err, "failed to purge cached answers")
	}
	return res.RowsAffected()
}
