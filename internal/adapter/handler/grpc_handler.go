package handler

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rl1809/order-ledger/internal/core/domain"
	"github.com/rl1809/order-ledger/internal/core/service"
)

type GRPCHandler struct {
	ledger *service.OrderLedger
}

func NewGRPCHandler(ledger *service.OrderLedger) *GRPCHandler {
	return &GRPCHandler{ledger: ledger}
}

// CreateOrder expects {"customer": string, "amount": number|string} and
// returns the created order.
func (h *GRPCHandler) CreateOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	amount, err := amountFromValue(fields["amount"])
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "amount must be a number")
	}

	id, err := h.ledger.CreateOrder(ctx, fields["customer"].GetStringValue(), amount)
	if err != nil {
		return nil, toStatus(err)
	}

	order, err := h.ledger.GetOrder(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return orderToStruct(order)
}

func (h *GRPCHandler) CancelOrder(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	if err := h.ledger.CancelOrder(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (h *GRPCHandler) GetOrder(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	order, err := h.ledger.GetOrder(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return orderToStruct(order)
}

func (h *GRPCHandler) IsHighValue(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	amount, err := decimal.NewFromString(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "amount must be a number")
	}
	return wrapperspb.Bool(h.ledger.IsHighValue(amount)), nil
}

func amountFromValue(v *structpb.Value) (decimal.Decimal, error) {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return decimal.Zero, errors.New("amount must be finite")
		}
		return decimal.NewFromFloat(kind.NumberValue), nil
	case *structpb.Value_StringValue:
		return decimal.NewFromString(kind.StringValue)
	case nil:
		return decimal.Zero, nil
	default:
		return decimal.Zero, errors.New("unsupported amount type")
	}
}

// Money fields are strings so no precision is lost on the wire.
func orderToStruct(o domain.Order) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":         o.ID,
		"customer":   o.Customer,
		"amount":     o.Amount.String(),
		"tax":        o.Tax().String(),
		"total":      o.Total().String(),
		"status":     string(o.Status),
		"created_at": o.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": o.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrLedgerClosed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
