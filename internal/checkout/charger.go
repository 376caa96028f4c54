package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// Charger is the payment provider boundary. The provider's protocol is its
// own business; checkout only needs a charge to succeed or fail.
type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type ChargeRequest struct {
	OrderID      string  `json:"order_id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	PaymentToken string  `json:"payment_token"`
}

type ChargeResult struct {
	PaymentID string `json:"payment_id"`
}

// BreakerCharger wraps a Charger with a circuit breaker so a struggling
// payment provider sheds load fast instead of tying up checkout requests.
type BreakerCharger struct {
	next    Charger
	cb      *gobreaker.CircuitBreaker[*ChargeResult]
	timeout time.Duration
}

func NewBreakerCharger(next Charger, log *logrus.Logger) *BreakerCharger {
	st := gobreaker.Settings{
		Name:        "PaymentProvider",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("CircuitBreaker[%s] state changed from %s to %s", name, from, to)
		},
	}

	return &BreakerCharger{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker[*ChargeResult](st),
		timeout: 10 * time.Second,
	}
}

func (b *BreakerCharger) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	return b.cb.Execute(func() (*ChargeResult, error) {
		return b.next.Charge(ctx, req)
	})
}

// HTTPCharger posts charges to the payment provider's REST endpoint.
type HTTPCharger struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPCharger(baseURL, apiKey string) *HTTPCharger {
	return &HTTPCharger{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (h *HTTPCharger) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("charge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("charge rejected with status %d: %s", resp.StatusCode, msg)
	}

	var result ChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode charge response: %w", err)
	}
	return &result, nil
}
