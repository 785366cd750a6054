package leaderboard

import "github.com/google/uuid"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Entry struct {
	Rank   int       `json:"rank"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
	Plan   string    `json:"plan"`
}

// ClampLimit maps out-of-range limits onto 1..MaxLimit, zero meaning the default.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// AssignRanks sets competition ranks on entries ordered by points
// descending: tied users share a rank and the next rank skips ahead, so a
// rank is always one more than the number of users with more points.
func AssignRanks(entries []Entry) {
	for i := range entries {
		if i > 0 && entries[i].Points == entries[i-1].Points {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}
