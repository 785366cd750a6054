package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Cache is the subset of the Redis cache the usecases depend on.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateLeaderboard(ctx context.Context) error
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool)
}

type Broadcaster interface {
	BroadcastJSON(v any)
}

// PointsListener is told about every successful points award.
type PointsListener interface {
	PointsAwarded(ctx context.Context, userID uuid.UUID, delta int, reason string)
}

type nopPoints struct{}

func (nopPoints) PointsAwarded(context.Context, uuid.UUID, int, string) {}

func pointsListener(l PointsListener) PointsListener {
	if l == nil {
		return nopPoints{}
	}
	return l
}
