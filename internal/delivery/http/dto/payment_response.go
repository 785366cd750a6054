package dto

import (
	"time"

	"mockraft/internal/config"
	"mockraft/internal/domain/payment"

	"github.com/google/uuid"
)

type PlanResponse struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

func NewPlanResponse(p config.Plan) PlanResponse {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return PlanResponse{
		Code:        p.Code,
		Name:        p.Name,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: p.Description,
		Features:    features,
	}
}

type PaymentResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderID       string    `json:"order_id"`
	PaymentID     *string   `json:"payment_id"`
	Plan          string    `json:"plan"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewPaymentResponse(p payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		PaymentID:     p.PaymentID,
		Plan:          p.Plan,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        string(p.Status),
		FailureReason: string(p.FailureReason),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// OrderResponse carries what the checkout widget needs to open the order.
type OrderResponse struct {
	Payment PaymentResponse `json:"payment"`
	Plan    PlanResponse    `json:"plan"`
	KeyID   string          `json:"key_id"`
}
