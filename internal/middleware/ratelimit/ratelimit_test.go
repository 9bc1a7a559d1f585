package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRejectsAfterBurst(t *testing.T) {
	rl := New(Config{RequestsPerMinute: 1, Burst: 2})
	defer rl.Stop()

	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	codes := make([]int, 3)
	for i := range codes {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		codes[i] = resp.StatusCode
	}

	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, codes)
}

func TestAllowIsPerClient(t *testing.T) {
	rl := New(Config{RequestsPerMinute: 1, Burst: 1})
	defer rl.Stop()
	now := time.Now()

	assert.True(t, rl.allow("10.0.0.1", now))
	assert.False(t, rl.allow("10.0.0.1", now))
	assert.True(t, rl.allow("10.0.0.2", now))
	assert.True(t, rl.allow("10.0.0.1", now.Add(time.Minute)))
}

func TestEvictIdle(t *testing.T) {
	rl := New(Config{})
	defer rl.Stop()
	now := time.Now()

	rl.allow("old", now.Add(-time.Hour))
	rl.allow("new", now)
	rl.evictIdle(now)

	assert.NotContains(t, rl.clients, "old")
	assert.Contains(t, rl.clients, "new")
}
