package handler

import (
	"context"
	"time"

	"mockraft/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness of the database and the cache. The service
// is unhealthy without the database; a missing cache only degrades it.
type HealthHandler struct {
	db      Pinger
	cache   Pinger
	timeout time.Duration
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, timeout: 2 * time.Second}
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	checks := fiber.Map{
		"database": probe(ctx, h.db),
		"cache":    probe(ctx, h.cache),
	}

	if checks["database"] != "ok" {
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, checks)
	}
	status := "ok"
	if checks["cache"] != "ok" {
		status = "degraded"
	}
	checks["status"] = status
	return response.Success(c, fiber.StatusOK, response.MessageOK, checks)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}
