package usecase

import (
	"context"
	"errors"

	"mockraft/internal/domain/user"
	"mockraft/internal/pkg/jwt"
	ucauth "mockraft/internal/usecase/auth"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthResult struct {
	User   user.User
	Tokens TokenPair
}

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (AuthResult, error)
	Login(ctx context.Context, in ucauth.LoginInput) (AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

type Auth struct {
	authSvc *ucauth.Service
	users   user.Repository
	jwt     jwt.Service
}

func NewAuthUsecase(users user.Repository, jwtSvc jwt.Service) *Auth {
	return &Auth{authSvc: ucauth.NewService(users), users: users, jwt: jwtSvc}
}

func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (AuthResult, error) {
	usr, err := u.authSvc.Register(ctx, in)
	if err != nil {
		return AuthResult{}, err
	}
	tokens, err := u.issue(usr)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: usr, Tokens: tokens}, nil
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (AuthResult, error) {
	usr, err := u.authSvc.Login(ctx, in)
	if err != nil {
		return AuthResult{}, err
	}
	tokens, err := u.issue(usr)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: usr, Tokens: tokens}, nil
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenPair{}, ErrRefreshTokenExpired
		}
		return TokenPair{}, ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	usr, err := u.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, ErrInternal
	}
	return u.issue(usr)
}

func (u *Auth) issue(usr user.User) (TokenPair, error) {
	access, err := u.jwt.GenerateAccessToken(usr.ID, usr.Email)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(usr.ID)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
