package repository

import (
	"context"
	"strings"
	"time"

	"mockraft/internal/database"
	"mockraft/internal/domain/chat"
	"mockraft/internal/domain/user"
)

type ChatRepository interface {
	Insert(ctx context.Context, m chat.Message) error
	List(ctx context.Context, channel string, before *time.Time, limit int) ([]chat.Message, error)
}

type PostgresChatRepository struct {
	db database.DB
}

func NewPostgresChatRepository(db database.DB) *PostgresChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) Insert(ctx context.Context, m chat.Message) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_messages (id, user_id, channel, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.Channel, m.Body, m.CreatedAt,
	)
	return err
}

// List returns the newest messages first, optionally only those older than before.
func (r *PostgresChatRepository) List(ctx context.Context, channel string, before *time.Time, limit int) ([]chat.Message, error) {
	if limit <= 0 || limit > chat.MaxHistory {
		limit = chat.MaxHistory
	}

	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.user_id, u.full_name, u.email, m.channel, m.body, m.created_at
		 FROM chat_messages m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.channel = $1 AND ($2::timestamptz IS NULL OR m.created_at < $2)
		 ORDER BY m.created_at DESC, m.id DESC
		 LIMIT $3`,
		channel, before, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chat.Message, 0)
	for rows.Next() {
		var m chat.Message
		var fullName, email string
		if err := rows.Scan(&m.ID, &m.UserID, &fullName, &email, &m.Channel, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Author = displayName(fullName, email)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func displayName(fullName, email string) string {
	return user.User{FullName: strings.TrimSpace(fullName), Email: email}.DisplayName()
}
