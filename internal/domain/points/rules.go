// Package points holds the award rules that drive the leaderboard.
package points

import "mockraft/internal/domain/interview"

const (
	InterviewCompleted = 10
	AptitudeCorrect    = 2
	AptitudeCompleted  = 5
)

// ForAnalysis awards the clamped rating of an analyzed answer.
func ForAnalysis(rating int) int {
	return interview.ClampRating(rating)
}

func ForAptitudeAnswer(correct bool) int {
	if correct {
		return AptitudeCorrect
	}
	return 0
}
