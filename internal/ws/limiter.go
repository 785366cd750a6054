package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	chatMessagesPerSecond = 1
	chatBurst             = 5
	limiterIdle           = 10 * time.Minute
)

// UserLimiter throttles inbound chat frames per user across all of that
// user's sockets.
type UserLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	buckets   map[uuid.UUID]*userBucket
	lastSweep time.Time
	now       func() time.Time
}

type userBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewUserLimiter(perSecond float64, burst int) *UserLimiter {
	if perSecond <= 0 {
		perSecond = chatMessagesPerSecond
	}
	if burst <= 0 {
		burst = 1
	}
	return &UserLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: map[uuid.UUID]*userBucket{},
		now:     time.Now,
	}
}

func (l *UserLimiter) Allow(userID uuid.UUID) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > limiterIdle {
		for id, b := range l.buckets {
			if now.Sub(b.seen) > limiterIdle {
				delete(l.buckets, id)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[userID]
	if !ok {
		b = &userBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[userID] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}
