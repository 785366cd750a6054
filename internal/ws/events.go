package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventChatMessage        = "chat_message"
	EventLeaderboardUpdated = "leaderboard_updated"
	EventError              = "error"
)

type ChatMessageEvent struct {
	Type      string    `json:"type"`
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt string    `json:"created_at"`
}

type LeaderboardUpdatedEvent struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	Points    int       `json:"points"`
	Timestamp string    `json:"timestamp"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func errorEvent(msg string) []byte {
	b, _ := json.Marshal(errorMessage{Type: EventError, Message: msg})
	return b
}

func NewChatMessageEvent(id, userID uuid.UUID, author, body string, at time.Time) ChatMessageEvent {
	return ChatMessageEvent{
		Type:      EventChatMessage,
		ID:        id,
		UserID:    userID,
		Author:    author,
		Body:      body,
		CreatedAt: at.UTC().Format(time.RFC3339),
	}
}

func NewLeaderboardUpdatedEvent(userID uuid.UUID, points int) LeaderboardUpdatedEvent {
	return LeaderboardUpdatedEvent{
		Type:      EventLeaderboardUpdated,
		UserID:    userID,
		Points:    points,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
