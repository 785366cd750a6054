package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mockraft/internal/config"

	"github.com/sirupsen/logrus"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Verification struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (Order, error)
	Verify(ctx context.Context, v Verification) (bool, error)
	KeyID() string
}

type httpGateway struct {
	baseURL string
	keyID   string
	client  *http.Client
	logger  *logrus.Logger
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type verifyResponse struct {
	Success bool `json:"success"`
}

// NewGateway returns nil when no base URL is configured.
func NewGateway(cfg config.PaymentConfig, logger *logrus.Logger) Gateway {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil
	}
	return &httpGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		keyID:   cfg.KeyID,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

func (g *httpGateway) KeyID() string { return g.keyID }

func (g *httpGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (Order, error) {
	var out Order
	if err := g.post(ctx, "/orders", createOrderRequest{Amount: amount, Currency: currency, Receipt: receipt}, &out); err != nil {
		return Order{}, err
	}
	out.ID = strings.TrimSpace(out.ID)
	if out.ID == "" {
		return Order{}, fmt.Errorf("%w: empty order id", ErrGatewayUnavailable)
	}
	if out.Amount == 0 {
		out.Amount = amount
	}
	if out.Currency == "" {
		out.Currency = currency
	}
	return out, nil
}

// Verify asks the gateway whether the signature matches the order and payment.
func (g *httpGateway) Verify(ctx context.Context, v Verification) (bool, error) {
	var out verifyResponse
	if err := g.post(ctx, "/verify", v, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

func (g *httpGateway) post(ctx context.Context, path string, body, out any) error {
	endpoint := g.baseURL + path
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		bodyStr := strings.TrimSpace(string(rb))
		if g.logger != nil {
			g.logger.Warnf("[Payment] gateway error endpoint=%s status=%d body=%q", endpoint, resp.StatusCode, bodyStr)
		}
		return fmt.Errorf("%w: status=%d", ErrGatewayUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrGatewayUnavailable, err)
	}
	return nil
}

var _ Gateway = (*httpGateway)(nil)
