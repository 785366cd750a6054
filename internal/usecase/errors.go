package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInternal            = errors.New("internal error")

	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrBusy          = errors.New("request already in progress")
	ErrUpstream      = errors.New("upstream service unavailable")
	ErrNotConfigured = errors.New("feature not configured")

	ErrAlreadyPaid = fmt.Errorf("%w: account is already on the paid plan", ErrConflict)
)

// invalidf reports a validation failure whose message is safe to show to
// the caller.
func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }
