// Package storage declares the narrow contracts the question engine needs
// from persistence: a topic URL configuration document and a log of recent
// answers. Backends live in sub-packages.
package storage

import (
	"context"
	"errors"

	"github.com/collegegpt/backend/internal/storage/models"
)

// ErrNotFound is returned when the topic URL document has never been written.
var ErrNotFound = errors.New("storage: not found")

type TopicURLStore interface {
	LoadTopicURLs(ctx context.Context) (map[string][]string, error)
	SaveTopicURLs(ctx context.Context, urls map[string][]string) error
}

type AnswerCache interface {
	// RecentAnswers returns up to limit entries, newest first.
	RecentAnswers(ctx context.Context, limit int) ([]models.CacheEntry, error)
	SaveAnswer(ctx context.Context, entry models.CacheEntry) error
}
