package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegegpt/backend/internal/storage"
	"github.com/collegegpt/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, c.InitSchema())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestTopicURLsRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.LoadTopicURLs(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	urls := map[string][]string{
		"placements": {"https://cmrtc.ac.in/t-p-cell/about-t-p-cell/", "https://cmrtc.ac.in/t-p-cell/companies-visited/"},
	}
	require.NoError(t, c.SaveTopicURLs(ctx, urls))

	urls["fees"] = []string{"https://cmrtc.ac.in/academics/fee-structure/"}
	require.NoError(t, c.SaveTopicURLs(ctx, urls))

	got, err := c.LoadTopicURLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, urls, got)
}

func TestAnswerCache(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

	for i, q := range []string{"first", "second", "third"} {
		require.NoError(t, c.SaveAnswer(ctx, models.CacheEntry{
			ID:                 q,
			Question:           q,
			NormalizedQuestion: q,
			SimilarityHash:     "hash-" + q,
			AnswerHTML:         "answer " + q,
			SourceURLs:         []string{"https://cmrtc.ac.in/"},
			Topic:              "fees",
			Strategy:           "robust",
			URLsScraped:        i,
			CreatedAt:          base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := c.RecentAnswers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
	assert.Equal(t, []string{"https://cmrtc.ac.in/"}, got[0].SourceURLs)
	assert.Nil(t, got[0].ImageURLs)
	assert.Equal(t, 2, got[0].URLsScraped)
	assert.Equal(t, "hash-third", got[0].SimilarityHash)
	assert.True(t, got[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	n, err := c.PurgeAnswersBefore(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := c.RecentAnswers(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
