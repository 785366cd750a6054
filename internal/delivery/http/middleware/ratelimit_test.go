package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"mockraft/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsBurstThenRejects(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("user:a"))
	assert.True(t, l.Allow("user:a"))
	assert.False(t, l.Allow("user:a"))

	// other callers have their own bucket
	assert.True(t, l.Allow("user:b"))

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("user:a"))
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	l := NewRateLimiter(60, 1)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("user:a")
	now = now.Add(l.idle + time.Second)
	l.Allow("user:b")

	l.mu.Lock()
	_, stillThere := l.buckets["user:a"]
	l.mu.Unlock()
	assert.False(t, stillThere)
}

func TestRateLimiter_MiddlewareKeysByUser(t *testing.T) {
	l := NewRateLimiter(1, 1)
	first, second := uuid.New(), uuid.New()

	app := fiber.New()
	app.Use(NewErrorMiddleware(logger.Discard()).Middleware())
	app.Use(func(c fiber.Ctx) error {
		if id, err := uuid.Parse(c.Get("X-User")); err == nil {
			c.Locals(CtxUserIDKey, id)
		}
		return c.Next()
	})
	app.Get("/", l.Middleware(), func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	hit := func(id uuid.UUID) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-User", id.String())
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusNoContent, hit(first))
	assert.Equal(t, fiber.StatusTooManyRequests, hit(first))
	assert.Equal(t, fiber.StatusNoContent, hit(second))
}
