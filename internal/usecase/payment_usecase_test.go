package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"mockraft/internal/config"
	"mockraft/internal/domain/payment"
	"mockraft/internal/domain/user"

	"github.com/google/uuid"
)

var testCatalog = config.PlanCatalog{Plans: []config.Plan{{Code: "premium", Name: "Premium", Amount: 49900, Currency: "INR"}}}

func newPaymentFixture(gw *fakeGateway) (*Payments, *fakeUsers, *memCache, user.User) {
	owner := user.User{ID: uuid.New(), Plan: user.PlanFree}
	users := newFakeUsers(owner)
	c := newMemCache()
	uc := NewPaymentUsecase(PaymentDeps{
		Payments:   newFakePayments(users),
		Users:      users,
		Gateway:    gw,
		Cache:      c,
		Catalog:    testCatalog,
		PendingTTL: 30 * time.Minute,
	})
	return uc, users, c, owner
}

func TestPaymentSuccessUpgradesPlan(t *testing.T) {
	gw := &fakeGateway{verified: true}
	uc, users, _, owner := newPaymentFixture(gw)
	ctx := context.Background()

	order, err := uc.CreateOrder(ctx, owner.ID, "Premium")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Payment.Status != payment.StatusPending || order.Payment.Amount != 49900 || order.KeyID != "rzp_test" {
		t.Fatalf("unexpected order %+v", order)
	}

	p, err := uc.Verify(ctx, owner.ID, VerifyPaymentInput{OrderID: order.Payment.OrderID, PaymentID: "pay_1", Signature: "sig"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Status != payment.StatusSuccess {
		t.Fatalf("expected success, got %s", p.Status)
	}
	u, _ := users.GetUserByID(ctx, owner.ID)
	if !u.IsPaid() {
		t.Fatalf("expected paid plan")
	}

	if _, err := uc.Verify(ctx, owner.ID, VerifyPaymentInput{OrderID: order.Payment.OrderID, PaymentID: "pay_1", Signature: "sig"}); !errors.Is(err, payment.ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
	if _, err := uc.CreateOrder(ctx, owner.ID, "premium"); !errors.Is(err, ErrAlreadyPaid) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestPaymentFailureKeepsFreePlan(t *testing.T) {
	uc, users, _, owner := newPaymentFixture(&fakeGateway{verified: false})
	ctx := context.Background()

	order, err := uc.CreateOrder(ctx, owner.ID, "premium")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	p, err := uc.Verify(ctx, owner.ID, VerifyPaymentInput{OrderID: order.Payment.OrderID, PaymentID: "pay_1", Signature: "bad"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Status != payment.StatusFailed {
		t.Fatalf("expected failed, got %s", p.Status)
	}
	u, _ := users.GetUserByID(ctx, owner.ID)
	if u.IsPaid() {
		t.Fatalf("plan must stay free")
	}
}

func TestCreateOrderGuards(t *testing.T) {
	gw := &fakeGateway{}
	uc, _, c, owner := newPaymentFixture(gw)
	ctx := context.Background()

	if _, err := uc.CreateOrder(ctx, owner.ID, "gold"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	release, _ := c.AcquireLock(ctx, "lock:payment:order:"+owner.ID.String(), 0)
	if _, err := uc.CreateOrder(ctx, owner.ID, "premium"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	release()
	if gw.orders != 0 {
		t.Fatalf("gateway must not be called while locked")
	}

	gw.err = errors.New("gateway down")
	if _, err := uc.CreateOrder(ctx, owner.ID, "premium"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestVerifyUnknownOrder(t *testing.T) {
	uc, _, _, owner := newPaymentFixture(&fakeGateway{verified: true})
	_, err := uc.Verify(context.Background(), owner.ID, VerifyPaymentInput{OrderID: "order_x", PaymentID: "p", Signature: "s"})
	if !errors.Is(err, payment.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := uc.Verify(context.Background(), owner.ID, VerifyPaymentInput{OrderID: "order_x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExpireStale(t *testing.T) {
	uc, _, _, owner := newPaymentFixture(&fakeGateway{})
	ctx := context.Background()

	uc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	if _, err := uc.CreateOrder(ctx, owner.ID, "premium"); err != nil {
		t.Fatalf("create order: %v", err)
	}
	uc.now = time.Now

	n, err := uc.ExpireStale(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 expired, got %d %v", n, err)
	}
	list, _ := uc.List(ctx, owner.ID)
	if len(list) != 1 || list[0].Status != payment.StatusFailed || list[0].FailureReason != payment.ReasonExpired {
		t.Fatalf("unexpected payments %+v", list)
	}
}

func TestVerifySettlesExpiredOrderWhenGatewayConfirms(t *testing.T) {
	gw := &fakeGateway{verified: true}
	uc, users, _, owner := newPaymentFixture(gw)
	ctx := context.Background()

	uc.now = func() time.Time { return time.Now().Add(-31 * time.Minute) }
	order, err := uc.CreateOrder(ctx, owner.ID, "premium")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	uc.now = time.Now
	if n, err := uc.ExpireStale(ctx); err != nil || n != 1 {
		t.Fatalf("expected 1 expired, got %d %v", n, err)
	}

	p, err := uc.Verify(ctx, owner.ID, VerifyPaymentInput{OrderID: order.Payment.OrderID, PaymentID: "pay_late", Signature: "sig"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Status != payment.StatusSuccess || p.FailureReason != "" {
		t.Fatalf("expected success, got %s (%s)", p.Status, p.FailureReason)
	}
	u, _ := users.GetUserByID(ctx, owner.ID)
	if !u.IsPaid() {
		t.Fatalf("expected paid plan after late verification")
	}
}

func TestVerifyDeclinedAfterExpiryStaysFailed(t *testing.T) {
	gw := &fakeGateway{verified: false}
	uc, users, _, owner := newPaymentFixture(gw)
	ctx := context.Background()

	uc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	order, err := uc.CreateOrder(ctx, owner.ID, "premium")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	uc.now = time.Now
	if _, err := uc.ExpireStale(ctx); err != nil {
		t.Fatalf("expire: %v", err)
	}

	if _, err := uc.Verify(ctx, owner.ID, VerifyPaymentInput{OrderID: order.Payment.OrderID, PaymentID: "pay_x", Signature: "bad"}); !errors.Is(err, payment.ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
	u, _ := users.GetUserByID(ctx, owner.ID)
	if u.IsPaid() {
		t.Fatalf("expected free plan")
	}
}
