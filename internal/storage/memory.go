package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/collegegpt/backend/internal/storage/models"
)

// Memory keeps both stores in process. It backs tests and single-node runs
// that do not need answers to survive a restart.
type Memory struct {
	mu      sync.RWMutex
	topics  map[string][]string
	answers []models.CacheEntry
	max     int
}

// NewMemory creates an empty store that retains at most max answers.
// A max of zero keeps everything.
func NewMemory(max int) *Memory {
	return &Memory{max: max}
}

func (m *Memory) LoadTopicURLs(_ context.Context) (map[string][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.topics == nil {
		return nil, ErrNotFound
	}
	return copyURLs(m.topics), nil
}

func (m *Memory) SaveTopicURLs(_ context.Context, urls map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.topics = copyURLs(urls)
	return nil
}

func (m *Memory) RecentAnswers(_ context.Context, limit int) ([]models.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.CacheEntry, len(m.answers))
	copy(out, m.answers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) SaveAnswer(_ context.Context, entry models.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.answers = append(m.answers, entry)
	if m.max > 0 && len(m.answers) > m.max {
		m.answers = m.answers[len(m.answers)-m.max:]
	}
	return nil
}

func copyURLs(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}
