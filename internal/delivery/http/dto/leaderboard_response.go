package dto

import "mockraft/internal/domain/leaderboard"

type LeaderboardResponse struct {
	Entries []leaderboard.Entry `json:"entries"`
	Limit   int                 `json:"limit"`
}
