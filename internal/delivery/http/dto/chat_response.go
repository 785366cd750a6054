package dto

import (
	"time"

	"mockraft/internal/domain/chat"

	"github.com/google/uuid"
)

type ChatMessageResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Author    string    `json:"author"`
	Channel   string    `json:"channel"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func NewChatMessageList(items []chat.Message) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, ChatMessageResponse{
			ID:        m.ID,
			UserID:    m.UserID,
			Author:    m.Author,
			Channel:   m.Channel,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

type ChatTokenResponse struct {
	Token     string    `json:"token"`
	Channel   string    `json:"channel"`
	ExpiresAt time.Time `json:"expires_at"`
}
