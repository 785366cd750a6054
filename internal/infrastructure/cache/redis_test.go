package cache

import (
	"context"
	"testing"
	"time"

	"mockraft/internal/logger"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	c := Disabled(logger.Discard())
	ctx := context.Background()

	if err := c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out map[string]int
	hit, err := c.GetJSON(ctx, "k", &out)
	if err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
	if err := c.InvalidateLeaderboard(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := c.Ping(ctx); err == nil {
		t.Fatalf("expected ping error on disabled cache")
	}
}

func TestDisabledCacheGrantsLocks(t *testing.T) {
	c := Disabled(nil)
	release, ok := c.AcquireLock(context.Background(), "lock:x", time.Second)
	if !ok {
		t.Fatalf("expected lock to be granted without redis")
	}
	release()

	var nilCache *Redis
	if _, ok := nilCache.AcquireLock(context.Background(), "lock:x", 0); !ok {
		t.Fatalf("expected nil cache to grant locks")
	}
}
