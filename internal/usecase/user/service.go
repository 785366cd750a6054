package user

import (
	"context"
	"errors"
	"strings"

	"mockraft/internal/domain/user"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("user not found")
	ErrInternal     = errors.New("internal error")
)

const maxFullNameLength = 120

type UpdateMeInput struct {
	FullName         *string
	SidebarCollapsed *bool
}

type Service struct {
	users user.Repository
}

func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	usr, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	return sanitizeUser(usr), nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	upd := user.ProfileUpdate{SidebarCollapsed: in.SidebarCollapsed}

	if in.FullName != nil {
		name := strings.Join(strings.Fields(*in.FullName), " ")
		if len([]rune(name)) > maxFullNameLength {
			return user.User{}, ErrInvalidInput
		}
		upd.FullName = &name
	}

	if upd.FullName == nil && upd.SidebarCollapsed == nil {
		return s.GetMe(ctx, userID)
	}

	if err := s.users.UpdateProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	return s.GetMe(ctx, userID)
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
