package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mockraft/internal/config"
	"mockraft/internal/domain/payment"
	"mockraft/internal/domain/user"
	paygw "mockraft/internal/infrastructure/payment"
	"mockraft/internal/metrics"
	"mockraft/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const orderLockTTL = 30 * time.Second

type OrderResult struct {
	Payment payment.Payment
	Plan    config.Plan
	KeyID   string
}

type VerifyPaymentInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

type PaymentUsecase interface {
	Plans() []config.Plan
	CreateOrder(ctx context.Context, userID uuid.UUID, planCode string) (OrderResult, error)
	Verify(ctx context.Context, userID uuid.UUID, in VerifyPaymentInput) (payment.Payment, error)
	List(ctx context.Context, userID uuid.UUID) ([]payment.Payment, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type Payments struct {
	repo       repository.PaymentRepository
	users      user.Repository
	gateway    paygw.Gateway
	cache      Cache
	catalog    config.PlanCatalog
	pendingTTL time.Duration
	logger     *logrus.Logger
	now        func() time.Time
}

type PaymentDeps struct {
	Payments   repository.PaymentRepository
	Users      user.Repository
	Gateway    paygw.Gateway
	Cache      Cache
	Catalog    config.PlanCatalog
	PendingTTL time.Duration
	Logger     *logrus.Logger
}

func NewPaymentUsecase(d PaymentDeps) *Payments {
	return &Payments{
		repo:       d.Payments,
		users:      d.Users,
		gateway:    d.Gateway,
		cache:      d.Cache,
		catalog:    d.Catalog,
		pendingTTL: d.PendingTTL,
		logger:     d.Logger,
		now:        time.Now,
	}
}

func (u *Payments) Plans() []config.Plan {
	return u.catalog.Plans
}

func (u *Payments) CreateOrder(ctx context.Context, userID uuid.UUID, planCode string) (OrderResult, error) {
	plan, err := u.catalog.Find(planCode)
	if err != nil {
		return OrderResult{}, invalidf("unknown plan %q", strings.TrimSpace(planCode))
	}

	usr, err := u.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return OrderResult{}, ErrUnauthorized
		}
		return OrderResult{}, ErrInternal
	}
	if usr.IsPaid() {
		return OrderResult{}, ErrAlreadyPaid
	}
	if u.gateway == nil {
		return OrderResult{}, ErrNotConfigured
	}

	if u.cache != nil {
		release, ok := u.cache.AcquireLock(ctx, "lock:payment:order:"+userID.String(), orderLockTTL)
		if !ok {
			return OrderResult{}, ErrBusy
		}
		defer release()
	}

	id := uuid.New()
	order, err := u.gateway.CreateOrder(ctx, plan.Amount, plan.Currency, id.String())
	if err != nil {
		u.logf("[Payment] create order failed user_id=%s err=%v", userID, err)
		return OrderResult{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	now := u.now().UTC()
	p := payment.Payment{
		ID:        id,
		UserID:    userID,
		OrderID:   order.ID,
		Plan:      plan.Code,
		Amount:    plan.Amount,
		Currency:  plan.Currency,
		Status:    payment.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if order.Amount > 0 {
		p.Amount = order.Amount
	}
	if order.Currency != "" {
		p.Currency = strings.ToUpper(order.Currency)
	}
	if err := u.repo.Create(ctx, p); err != nil {
		u.logf("[Payment] store order failed user_id=%s order_id=%s err=%v", userID, order.ID, err)
		return OrderResult{}, ErrInternal
	}
	metrics.RecordPayment(string(payment.StatusPending))

	return OrderResult{Payment: p, Plan: plan, KeyID: u.gateway.KeyID()}, nil
}

// Verify asks the gateway whether the checkout really succeeded and settles
// the pending payment accordingly. Settling and the plan upgrade commit
// together.
func (u *Payments) Verify(ctx context.Context, userID uuid.UUID, in VerifyPaymentInput) (payment.Payment, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	in.Signature = strings.TrimSpace(in.Signature)
	if in.OrderID == "" {
		return payment.Payment{}, invalidf("order_id is required")
	}
	if in.PaymentID == "" || in.Signature == "" {
		return payment.Payment{}, invalidf("payment_id and signature are required")
	}
	if u.gateway == nil {
		return payment.Payment{}, ErrNotConfigured
	}

	ok, err := u.gateway.Verify(ctx, paygw.Verification{
		OrderID:   in.OrderID,
		PaymentID: in.PaymentID,
		Signature: in.Signature,
	})
	if err != nil {
		u.logf("[Payment] verify failed order_id=%s err=%v", in.OrderID, err)
		return payment.Payment{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	p, err := u.repo.Settle(ctx, userID, payment.Outcome{OrderID: in.OrderID, PaymentID: in.PaymentID, Success: ok})
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) || errors.Is(err, payment.ErrNotPending) {
			return payment.Payment{}, err
		}
		u.logf("[Payment] settle failed order_id=%s err=%v", in.OrderID, err)
		return payment.Payment{}, ErrInternal
	}
	metrics.RecordPayment(string(p.Status))

	if u.logger != nil {
		u.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"order_id": p.OrderID,
			"status":   p.Status,
		}).Info("[Payment] Settled")
	}
	return p, nil
}

func (u *Payments) List(ctx context.Context, userID uuid.UUID) ([]payment.Payment, error) {
	items, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		u.logf("[Payment] list failed user_id=%s err=%v", userID, err)
		return nil, ErrInternal
	}
	return items, nil
}

// ExpireStale fails pending payments older than the configured TTL.
func (u *Payments) ExpireStale(ctx context.Context) (int64, error) {
	if u.pendingTTL <= 0 {
		return 0, nil
	}
	n, err := u.repo.ExpireStale(ctx, u.now().UTC().Add(-u.pendingTTL))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.RecordPayments(string(payment.StatusFailed), int(n))
		u.logf("[Payment] expired stale pending payments count=%d", n)
	}
	return n, nil
}

func (u *Payments) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}
