package user

import (
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

type User struct {
	ID                uuid.UUID
	Email             string
	PasswordHash      string
	FullName          string
	Plan              Plan
	Points            int
	InterviewsCreated int
	SidebarCollapsed  bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (u User) IsPaid() bool {
	return u.Plan == PlanPaid
}

// DisplayName is what other users see on the leaderboard and in chat.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	for i, r := range u.Email {
		if r == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

type ProfileUpdate struct {
	FullName         *string
	SidebarCollapsed *bool
}
