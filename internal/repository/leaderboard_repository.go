package repository

import (
	"context"

	"mockraft/internal/database"
	"mockraft/internal/domain/leaderboard"

	"github.com/google/uuid"
)

type LeaderboardRepository interface {
	Top(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	Rank(ctx context.Context, userID uuid.UUID) (int, error)
}

type PostgresLeaderboardRepository struct {
	db database.DB
}

func NewPostgresLeaderboardRepository(db database.DB) *PostgresLeaderboardRepository {
	return &PostgresLeaderboardRepository{db: db}
}

func (r *PostgresLeaderboardRepository) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	limit = leaderboard.ClampLimit(limit)

	rows, err := r.db.Query(ctx,
		`SELECT id, full_name, email, points, plan FROM users
		 ORDER BY points DESC, created_at ASC, id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]leaderboard.Entry, 0, limit)
	for rows.Next() {
		var e leaderboard.Entry
		var fullName, email string
		if err := rows.Scan(&e.UserID, &fullName, &email, &e.Points, &e.Plan); err != nil {
			return nil, err
		}
		e.Name = displayName(fullName, email)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	leaderboard.AssignRanks(out)
	return out, nil
}

// Rank is one more than the number of users holding strictly more points.
func (r *PostgresLeaderboardRepository) Rank(ctx context.Context, userID uuid.UUID) (int, error) {
	var rank int
	err := r.db.QueryRow(ctx,
		`SELECT 1 + COUNT(1) FROM users WHERE points > (SELECT points FROM users WHERE id = $1)`,
		userID,
	).Scan(&rank)
	if err != nil {
		return 0, err
	}
	return rank, nil
}
