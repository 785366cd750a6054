package usecase

import (
	"context"
	"errors"
	"fmt"

	"mockraft/internal/domain/leaderboard"
	"mockraft/internal/domain/user"
	"mockraft/internal/infrastructure/cache"
	"mockraft/internal/metrics"
	"mockraft/internal/repository"
	"mockraft/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type LeaderboardUsecase interface {
	Top(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	MyRank(ctx context.Context, userID uuid.UUID) (leaderboard.Entry, error)
	Warm(ctx context.Context) error
}

type Leaderboard struct {
	repo   repository.LeaderboardRepository
	users  user.Repository
	cache  Cache
	hub    Broadcaster
	logger *logrus.Logger
}

func NewLeaderboardUsecase(repo repository.LeaderboardRepository, users user.Repository, c Cache, hub Broadcaster, logger *logrus.Logger) *Leaderboard {
	return &Leaderboard{repo: repo, users: users, cache: c, hub: hub, logger: logger}
}

func topCacheKey(limit int) string {
	return fmt.Sprintf("%stop:%d", cache.LeaderboardPrefix, limit)
}

func (u *Leaderboard) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	limit = leaderboard.ClampLimit(limit)
	key := topCacheKey(limit)

	if u.cache != nil {
		var cached []leaderboard.Entry
		if ok, err := u.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}
	return u.load(ctx, limit)
}

func (u *Leaderboard) load(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	entries, err := u.repo.Top(ctx, limit)
	if err != nil {
		u.logf("[Leaderboard] query failed limit=%d err=%v", limit, err)
		return nil, ErrInternal
	}
	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, topCacheKey(limit), entries, 0)
	}
	return entries, nil
}

func (u *Leaderboard) MyRank(ctx context.Context, userID uuid.UUID) (leaderboard.Entry, error) {
	usr, err := u.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return leaderboard.Entry{}, ErrNotFound
		}
		return leaderboard.Entry{}, ErrInternal
	}
	rank, err := u.repo.Rank(ctx, userID)
	if err != nil {
		u.logf("[Leaderboard] rank failed user_id=%s err=%v", userID, err)
		return leaderboard.Entry{}, ErrInternal
	}
	return leaderboard.Entry{
		Rank:   rank,
		UserID: usr.ID,
		Name:   usr.DisplayName(),
		Points: usr.Points,
		Plan:   string(usr.Plan),
	}, nil
}

// Warm refreshes the default page of the leaderboard cache.
func (u *Leaderboard) Warm(ctx context.Context) error {
	_, err := u.load(ctx, leaderboard.DefaultLimit)
	return err
}

// PointsAwarded drops every cached leaderboard page and tells connected
// clients to refetch.
func (u *Leaderboard) PointsAwarded(ctx context.Context, userID uuid.UUID, delta int, reason string) {
	if delta <= 0 {
		return
	}
	metrics.RecordPoints(reason, delta)
	if u.cache != nil {
		if err := u.cache.InvalidateLeaderboard(ctx); err != nil {
			u.logf("[Leaderboard] invalidate failed err=%v", err)
		}
	}
	if u.hub != nil {
		u.hub.BroadcastJSON(ws.NewLeaderboardUpdatedEvent(userID, delta))
	}
}

func (u *Leaderboard) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}
