package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"mockraft/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	LeaderboardPrefix = "leaderboard:"
	defaultLockTTL    = 30 * time.Second
)

// releaseScript deletes a lock only when it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type Redis struct {
	client *redis.Client
	logger *logrus.Logger
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

// NewRedis connects to Redis. When the server cannot be reached the returned
// cache is a no-op and callers fall through to the database.
func NewRedis(cfg config.RedisConfig, logger *logrus.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if logger != nil {
			logger.Warnf("[Cache] Redis unavailable, bypassing cache addr=%s err=%v", cfg.Addr(), err)
		}
		_ = client.Close()
		return &Redis{logger: logger, ttl: cfg.TTL}
	}

	if logger != nil {
		logger.Printf("[Cache] Redis connected addr=%s", cfg.Addr())
	}
	return &Redis{client: client, logger: logger, ttl: cfg.TTL}
}

// Disabled returns a cache that never stores anything.
func Disabled(logger *logrus.Logger) *Redis {
	return &Redis{logger: logger}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warnf("[Cache] Redis error, bypassing cache: %v", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	if ttl <= 0 {
		ttl = 600 * time.Second
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.isUnavailable() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil && r.logger != nil {
			r.logger.Warnf("[Cache] Redis delete error key=%s pattern=%s err=%v", k, pattern, err)
		}
	}
	return iter.Err()
}

func (r *Redis) InvalidateLeaderboard(ctx context.Context) error {
	return r.DeleteByPattern(ctx, LeaderboardPrefix+"*")
}

// AcquireLock takes a short-lived exclusive lock on key. ok is false when
// another holder owns it. When Redis is unavailable the lock is granted so
// callers fall back to database constraints.
func (r *Redis) AcquireLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool) {
	noop := func() {}
	if r.isUnavailable() {
		return noop, true
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	token := uuid.NewString()
	acquired, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return noop, true
	}
	if !acquired {
		return noop, false
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			r.warnUnavailableOnce(err)
		}
	}, true
}
