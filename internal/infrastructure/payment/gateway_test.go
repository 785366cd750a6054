package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mockraft/internal/config"
	"mockraft/internal/logger"
)

func TestCreateOrderAndVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders":
			var req createOrderRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode: %v", err)
			}
			if req.Amount != 49900 || req.Currency != "INR" || req.Receipt != "rcpt_1" {
				t.Errorf("unexpected order request: %+v", req)
			}
			_, _ = w.Write([]byte(`{"id":"order_123","amount":49900,"currency":"INR"}`))
		case "/verify":
			var v Verification
			_ = json.NewDecoder(r.Body).Decode(&v)
			_, _ = w.Write([]byte(`{"success":` + map[bool]string{true: "true", false: "false"}[v.Signature == "good"] + `}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := NewGateway(config.PaymentConfig{BaseURL: srv.URL + "/", KeyID: "key_test"}, logger.Discard())
	if g == nil {
		t.Fatalf("expected gateway")
	}
	if g.KeyID() != "key_test" {
		t.Fatalf("unexpected key id %q", g.KeyID())
	}

	o, err := g.CreateOrder(context.Background(), 49900, "INR", "rcpt_1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if o.ID != "order_123" {
		t.Fatalf("unexpected order %+v", o)
	}

	ok, err := g.Verify(context.Background(), Verification{OrderID: "order_123", PaymentID: "pay_1", Signature: "good"})
	if err != nil || !ok {
		t.Fatalf("expected verified, got %v %v", ok, err)
	}
	ok, err = g.Verify(context.Background(), Verification{OrderID: "order_123", PaymentID: "pay_1", Signature: "bad"})
	if err != nil || ok {
		t.Fatalf("expected rejected, got %v %v", ok, err)
	}
}

func TestGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/orders" {
			_, _ = w.Write([]byte(`{"id":""}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGateway(config.PaymentConfig{BaseURL: srv.URL}, nil)
	if _, err := g.CreateOrder(context.Background(), 100, "INR", "r"); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable for empty id, got %v", err)
	}
	if _, err := g.Verify(context.Background(), Verification{}); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable for 500, got %v", err)
	}
	if NewGateway(config.PaymentConfig{}, nil) != nil {
		t.Fatalf("expected nil gateway without base url")
	}
}
