package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rl1809/order-ledger/internal/core/domain"
	"github.com/rl1809/order-ledger/internal/core/service"
	"github.com/rl1809/order-ledger/internal/port"
)

const idempotencyHeader = "Idempotency-Key"

var tracer = otel.Tracer("github.com/rl1809/order-ledger/internal/adapter/handler")

type HTTPHandler struct {
	ledger      *service.OrderLedger
	idempotency port.IdempotencyStore
}

type CreateOrderHTTPRequest struct {
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
}

type CreateOrderHTTPResponse struct {
	OrderID int64 `json:"order_id"`
}

type HighValueHTTPResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	HighValue bool            `json:"high_value"`
}

type ErrorHTTPResponse struct {
	Error string `json:"error"`
}

// NewHTTPHandler builds the HTTP API. idempotency may be nil, in which case
// the Idempotency-Key header is ignored.
func NewHTTPHandler(ledger *service.OrderLedger, idempotency port.IdempotencyStore) *HTTPHandler {
	return &HTTPHandler{ledger: ledger, idempotency: idempotency}
}

func (h *HTTPHandler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	// Registered on the root router so a method mismatch answers 405.
	r.HandleFunc("/api/orders", h.CreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/orders", h.ListOrders).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}", h.GetOrder).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}/cancel", h.CancelOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/high-value", h.IsHighValue).Methods(http.MethodGet)
	return r
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req CreateOrderHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid request body"})
		return
	}

	key := r.Header.Get(idempotencyHeader)
	if key != "" && h.idempotency != nil {
		key = "order:create:" + key
		ok, err := h.idempotency.SetIdempotency(ctx, key)
		if err != nil {
			failSpan(span, err)
			writeJSON(w, http.StatusInternalServerError, ErrorHTTPResponse{Error: "idempotency check failed"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusConflict, ErrorHTTPResponse{Error: "duplicate request"})
			return
		}
	}

	id, err := h.ledger.CreateOrder(ctx, req.Customer, req.Amount)
	if err != nil {
		if key != "" && h.idempotency != nil {
			if releaseErr := h.idempotency.ReleaseIdempotency(ctx, key); releaseErr != nil {
				failSpan(span, fmt.Errorf("release idempotency key: %w", releaseErr))
			}
		}
		failSpan(span, err)
		writeError(w, err)
		return
	}

	span.SetAttributes(attribute.Int64("order.id", id))
	writeJSON(w, http.StatusCreated, CreateOrderHTTPResponse{OrderID: id})
}

func (h *HTTPHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "CancelOrder")
	defer span.End()

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("order.id", id))

	if err := h.ledger.CancelOrder(ctx, id); err != nil {
		failSpan(span, err)
		writeError(w, err)
		return
	}

	order, err := h.ledger.GetOrder(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.ledger.GetOrder(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	writeJSON(w, http.StatusOK, h.ledger.ListOrders())
}

func (h *HTTPHandler) IsHighValue(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "amount must be a number"})
		return
	}

	writeJSON(w, http.StatusOK, HighValueHTTPResponse{
		Amount:    amount,
		HighValue: h.ledger.IsHighValue(amount),
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "order id must be an integer"})
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidState):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrLedgerClosed):
		status, message = http.StatusServiceUnavailable, err.Error()
	}

	writeJSON(w, status, ErrorHTTPResponse{Error: message})
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
