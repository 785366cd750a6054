package chat

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultChannel = "community"
	MaxBodyLength  = 1000
	MaxHistory     = 100
)

var ErrInvalidBody = errors.New("message body must be 1..1000 characters")

type Message struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Author    string
	Channel   string
	Body      string
	CreatedAt time.Time
}

// NormalizeBody trims the body and enforces the length limit in characters.
func NormalizeBody(s string) (string, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n == 0 || n > MaxBodyLength {
		return "", ErrInvalidBody
	}
	return s, nil
}
