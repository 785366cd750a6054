package repository

import (
	"context"
	"time"

	"mockraft/internal/database"
	"mockraft/internal/domain/payment"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	Create(ctx context.Context, p payment.Payment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]payment.Payment, error)
	Settle(ctx context.Context, userID uuid.UUID, o payment.Outcome) (payment.Payment, error)
	ExpireStale(ctx context.Context, before time.Time) (int64, error)
}

type PostgresPaymentRepository struct {
	db database.DB
}

func NewPostgresPaymentRepository(db database.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

const paymentColumns = `id, user_id, order_id, payment_id, plan, amount, currency, status, failure_reason,
	created_at, updated_at`

func (r *PostgresPaymentRepository) Create(ctx context.Context, p payment.Payment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO payments (id, user_id, order_id, plan, amount, currency, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		p.ID, p.UserID, p.OrderID, p.Plan, p.Amount, p.Currency, string(p.Status), p.CreatedAt,
	)
	return err
}

func (r *PostgresPaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]payment.Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]payment.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Settle applies o to the payment under a row lock and, on success, upgrades
// the owner's plan in the same transaction. See payment.CanSettle for which
// transitions are allowed.
func (r *PostgresPaymentRepository) Settle(ctx context.Context, userID uuid.UUID, o payment.Outcome) (payment.Payment, error) {
	var out payment.Payment
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		p, err := scanPayment(tx.QueryRow(ctx,
			`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 AND user_id = $2 FOR UPDATE`,
			o.OrderID, userID,
		))
		if err != nil {
			if database.IsNoRows(err) {
				return payment.ErrNotFound
			}
			return err
		}
		if !p.CanSettle(o) {
			return payment.ErrNotPending
		}

		var paymentID *string
		if o.PaymentID != "" {
			paymentID = &o.PaymentID
		}
		status, reason := o.Status(), o.FailureReason()
		if err := tx.QueryRow(ctx,
			`UPDATE payments SET status = $2, payment_id = $3, failure_reason = NULLIF($4, ''), updated_at = now()
			 WHERE id = $1 RETURNING updated_at`,
			p.ID, string(status), paymentID, string(reason),
		).Scan(&p.UpdatedAt); err != nil {
			return err
		}
		p.Status = status
		p.FailureReason = reason
		p.PaymentID = paymentID

		if status == payment.StatusSuccess {
			if _, err := tx.Exec(ctx,
				`UPDATE users SET plan = 'paid', updated_at = now() WHERE id = $1`, userID,
			); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	return out, err
}

func (r *PostgresPaymentRepository) ExpireStale(ctx context.Context, before time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE payments SET status = 'failed', failure_reason = 'expired', updated_at = now()
		 WHERE status = 'pending' AND created_at < $1`,
		before,
	)
}

func scanPayment(row database.Row) (payment.Payment, error) {
	var p payment.Payment
	var status string
	var reason *string
	if err := row.Scan(&p.ID, &p.UserID, &p.OrderID, &p.PaymentID, &p.Plan, &p.Amount, &p.Currency, &status, &reason,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return payment.Payment{}, err
	}
	p.Status = payment.Status(status)
	if reason != nil {
		p.FailureReason = payment.FailureReason(*reason)
	}
	return p, nil
}
