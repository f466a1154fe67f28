package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/rl1809/order-ledger/internal/core/service"
)

// Mock IdempotencyStore
type mockIdempotency struct {
	mu         sync.Mutex
	keys       map[string]bool
	releaseErr error
}

func newMockIdempotency() *mockIdempotency {
	return &mockIdempotency{keys: make(map[string]bool)}
}

func (m *mockIdempotency) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockIdempotency) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.releaseErr != nil {
		return m.releaseErr
	}
	delete(m.keys, key)
	return nil
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTP_CreateAndCancel(t *testing.T) {
	ledger := service.NewOrderLedger()
	h := NewHTTPHandler(ledger, nil).Routes()

	rec := do(t, h, http.MethodPost, "/api/orders", `{"customer":"Alice","amount":100.0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var created CreateOrderHTTPResponse
	json.NewDecoder(rec.Body).Decode(&created)
	if created.OrderID != 1 {
		t.Errorf("expected order id 1, got %d", created.OrderID)
	}

	rec = do(t, h, http.MethodGet, "/api/orders/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var order struct {
		Tax    decimal.Decimal `json:"tax"`
		Total  decimal.Decimal `json:"total"`
		Status string          `json:"status"`
	}
	json.NewDecoder(rec.Body).Decode(&order)
	if !order.Tax.Equal(decimal.NewFromInt(13)) || !order.Total.Equal(decimal.NewFromInt(113)) {
		t.Errorf("expected tax 13 and total 113, got %s and %s", order.Tax, order.Total)
	}

	rec = do(t, h, http.MethodPost, "/api/orders/1/cancel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	json.NewDecoder(rec.Body).Decode(&order)
	if order.Status != "cancelled" {
		t.Errorf("expected cancelled, got %s", order.Status)
	}

	rec = do(t, h, http.MethodPost, "/api/orders/1/cancel", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on second cancel, got %d", rec.Code)
	}
}

func TestHTTP_ErrorMapping(t *testing.T) {
	h := NewHTTPHandler(service.NewOrderLedger(), nil).Routes()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"blank customer", http.MethodPost, "/api/orders", `{"customer":"  ","amount":10}`, http.StatusBadRequest},
		{"bad body", http.MethodPost, "/api/orders", `{`, http.StatusBadRequest},
		{"zero id", http.MethodPost, "/api/orders/0/cancel", "", http.StatusBadRequest},
		{"negative id", http.MethodPost, "/api/orders/-5/cancel", "", http.StatusBadRequest},
		{"non numeric id", http.MethodGet, "/api/orders/abc", "", http.StatusBadRequest},
		{"unknown id", http.MethodPost, "/api/orders/42/cancel", "", http.StatusNotFound},
		{"unknown get", http.MethodGet, "/api/orders/42", "", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/orders/1", "", http.StatusMethodNotAllowed},
		{"wrong method on cancel", http.MethodGet, "/api/orders/1/cancel", "", http.StatusMethodNotAllowed},
		{"wrong method on collection", http.MethodPut, "/api/orders", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}
}

func TestHTTP_ClosedLedger(t *testing.T) {
	ledger := service.NewOrderLedger()
	ledger.Close()
	h := NewHTTPHandler(ledger, nil).Routes()

	rec := do(t, h, http.MethodPost, "/api/orders", `{"customer":"Alice","amount":1}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHTTP_IdempotencyKey(t *testing.T) {
	store := newMockIdempotency()
	h := NewHTTPHandler(service.NewOrderLedger(), store).Routes()

	// Rejected request releases its key
	rec := do(t, h, http.MethodPost, "/api/orders", `{"customer":"","amount":10}`, idempotencyHeader, "k1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/orders", `{"customer":"Bob","amount":10}`, idempotencyHeader, "k1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/orders", `{"customer":"Bob","amount":10}`, idempotencyHeader, "k1")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate key, got %d", rec.Code)
	}
}

func TestHTTP_ListOrders(t *testing.T) {
	ledger := service.NewOrderLedger()
	ledger.CreateOrder(context.Background(), "Alice", decimal.NewFromInt(1))
	ledger.CreateOrder(context.Background(), "Bob", decimal.NewFromInt(2))
	h := NewHTTPHandler(ledger, nil).Routes()

	rec := do(t, h, http.MethodGet, "/api/orders", "")
	var orders []struct {
		ID       int64  `json:"id"`
		Customer string `json:"customer"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 2 || orders[1].Customer != "Bob" {
		t.Errorf("unexpected orders: %+v", orders)
	}
}

func TestHTTP_IsHighValue(t *testing.T) {
	h := NewHTTPHandler(service.NewOrderLedger(), nil).Routes()

	tests := []struct {
		amount string
		want   bool
	}{
		{"999.99", false},
		{"1000.0", true},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, "/api/high-value?amount="+tt.amount, "")
		var resp HighValueHTTPResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.HighValue != tt.want {
			t.Errorf("amount %s: expected %v, got %v", tt.amount, tt.want, resp.HighValue)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/high-value?amount=lots", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHTTP_HealthCheck(t *testing.T) {
	h := NewHTTPHandler(service.NewOrderLedger(), nil).Routes()

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health response: %d %s", rec.Code, rec.Body)
	}
}

func TestHTTP_IdempotencyReleaseFailureIsTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	store := newMockIdempotency()
	store.releaseErr = errors.New("redis timeout")
	h := NewHTTPHandler(service.NewOrderLedger(), store).Routes()

	rec := do(t, h, http.MethodPost, "/api/orders", `{"customer":"","amount":10}`, idempotencyHeader, "k2")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	found := false
	for _, span := range recorder.Ended() {
		if span.Name() != "CreateOrder" {
			continue
		}
		for _, event := range span.Events() {
			for _, attr := range event.Attributes {
				if strings.Contains(attr.Value.Emit(), "release idempotency key: redis timeout") {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("expected the release failure to be recorded on the CreateOrder span")
	}
}
