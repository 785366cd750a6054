package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("payment not found")
	ErrNotPending = errors.New("payment is not pending")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// FailureReason tells a local timeout apart from a gateway decline.
type FailureReason string

const (
	ReasonExpired  FailureReason = "expired"
	ReasonDeclined FailureReason = "declined"
)

type Payment struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	OrderID   string
	PaymentID *string
	Plan      string
	Amount    int64
	Currency  string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	// FailureReason is empty unless Status is failed.
	FailureReason FailureReason
}

// Outcome is the settlement decision for a pending order.
type Outcome struct {
	OrderID   string
	PaymentID string
	Success   bool
}

func (o Outcome) Status() Status {
	if o.Success {
		return StatusSuccess
	}
	return StatusFailed
}

func (o Outcome) FailureReason() FailureReason {
	if o.Success {
		return ""
	}
	return ReasonDeclined
}

// CanSettle reports whether o may be applied to p. Pending payments take any
// outcome. An order that only expired locally still accepts a success the
// gateway has confirmed, since the money has been captured.
func (p Payment) CanSettle(o Outcome) bool {
	switch p.Status {
	case StatusPending:
		return true
	case StatusFailed:
		return o.Success && p.FailureReason == ReasonExpired
	default:
		return false
	}
}
