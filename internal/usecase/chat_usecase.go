package usecase

import (
	"context"
	"errors"
	"time"

	"mockraft/internal/domain/chat"
	"mockraft/internal/domain/user"
	"mockraft/internal/metrics"
	"mockraft/internal/pkg/jwt"
	"mockraft/internal/repository"
	"mockraft/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ChatToken struct {
	Token     string
	Channel   string
	ExpiresAt time.Time
}

type ChatIdentity struct {
	UserID uuid.UUID
	Name   string
}

type ChatUsecase interface {
	History(ctx context.Context, before *time.Time, limit int) ([]chat.Message, error)
	IssueToken(ctx context.Context, userID uuid.UUID) (ChatToken, error)
	Authenticate(ctx context.Context, token string) (ChatIdentity, error)
	Post(ctx context.Context, id ChatIdentity, body string) (chat.Message, error)
}

type Chat struct {
	repo   repository.ChatRepository
	users  user.Repository
	jwt    jwt.Service
	hub    Broadcaster
	logger *logrus.Logger
	now    func() time.Time
}

func NewChatUsecase(repo repository.ChatRepository, users user.Repository, jwtSvc jwt.Service, hub Broadcaster, logger *logrus.Logger) *Chat {
	return &Chat{repo: repo, users: users, jwt: jwtSvc, hub: hub, logger: logger, now: time.Now}
}

func (u *Chat) History(ctx context.Context, before *time.Time, limit int) ([]chat.Message, error) {
	if limit <= 0 || limit > chat.MaxHistory {
		limit = chat.MaxHistory
	}
	msgs, err := u.repo.List(ctx, chat.DefaultChannel, before, limit)
	if err != nil {
		u.logf("[Chat] history failed err=%v", err)
		return nil, ErrInternal
	}
	return msgs, nil
}

func (u *Chat) IssueToken(ctx context.Context, userID uuid.UUID) (ChatToken, error) {
	usr, err := u.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ChatToken{}, ErrUnauthorized
		}
		return ChatToken{}, ErrInternal
	}
	tok, exp, err := u.jwt.GenerateChatToken(usr.ID, usr.Email)
	if err != nil {
		return ChatToken{}, ErrInternal
	}
	return ChatToken{Token: tok, Channel: chat.DefaultChannel, ExpiresAt: exp}, nil
}

// Authenticate accepts a chat token, or a regular access token, and resolves
// the display name shown next to the user's messages.
func (u *Chat) Authenticate(ctx context.Context, token string) (ChatIdentity, error) {
	if token == "" {
		return ChatIdentity{}, ErrUnauthorized
	}
	claims, err := u.jwt.ValidateToken(token)
	if err != nil {
		return ChatIdentity{}, ErrUnauthorized
	}
	if claims.TokenType != jwt.TokenTypeChat && claims.TokenType != jwt.TokenTypeAccess {
		return ChatIdentity{}, ErrUnauthorized
	}
	usr, err := u.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ChatIdentity{}, ErrUnauthorized
		}
		return ChatIdentity{}, ErrInternal
	}
	return ChatIdentity{UserID: usr.ID, Name: usr.DisplayName()}, nil
}

func (u *Chat) Post(ctx context.Context, id ChatIdentity, body string) (chat.Message, error) {
	body, err := chat.NormalizeBody(body)
	if err != nil {
		return chat.Message{}, invalidf("%s", err.Error())
	}

	m := chat.Message{
		ID:        uuid.New(),
		UserID:    id.UserID,
		Author:    id.Name,
		Channel:   chat.DefaultChannel,
		Body:      body,
		CreatedAt: u.now().UTC(),
	}
	if err := u.repo.Insert(ctx, m); err != nil {
		u.logf("[Chat] insert failed user_id=%s err=%v", id.UserID, err)
		return chat.Message{}, ErrInternal
	}
	metrics.ChatMessageAccepted()

	if u.hub != nil {
		u.hub.BroadcastJSON(ws.NewChatMessageEvent(m.ID, m.UserID, m.Author, m.Body, m.CreatedAt))
	}
	return m, nil
}

func (u *Chat) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}
