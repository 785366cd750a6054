package dto

import (
	"time"

	"mockraft/internal/domain/user"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	Plan              string    `json:"plan"`
	Points            int       `json:"points"`
	InterviewsCreated int       `json:"interviews_created"`
	SidebarCollapsed  bool      `json:"sidebar_collapsed"`
	CreatedAt         time.Time `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		FullName:          u.FullName,
		Plan:              string(u.Plan),
		Points:            u.Points,
		InterviewsCreated: u.InterviewsCreated,
		SidebarCollapsed:  u.SidebarCollapsed,
		CreatedAt:         u.CreatedAt,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User UserResponse `json:"user"`
	TokenResponse
}
