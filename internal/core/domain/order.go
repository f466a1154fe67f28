package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var (
	// TaxRate is the HST rate applied to every order.
	TaxRate = decimal.RequireFromString("0.13")

	// HighValueThreshold is the smallest amount considered high value.
	HighValueThreshold = decimal.NewFromInt(1000)
)

// Order holds only the base amount. Tax and total are always derived from it.
type Order struct {
	ID        int64
	Customer  string
	Amount    decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewOrder(id int64, customer string, amount decimal.Decimal, now time.Time) (Order, error) {
	if strings.TrimSpace(customer) == "" {
		return Order{}, fmt.Errorf("%w: customer is required", ErrInvalidArgument)
	}
	return Order{
		ID:        id,
		Customer:  customer,
		Amount:    amount,
		Status:    OrderStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CalculateTax returns zero for non-positive amounts.
func CalculateTax(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(TaxRate)
}

func IsHighValue(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(HighValueThreshold)
}

func (o Order) Tax() decimal.Decimal {
	return CalculateTax(o.Amount)
}

func (o Order) Total() decimal.Decimal {
	return o.Amount.Add(o.Tax())
}

func (o Order) CanBeCancelled() bool {
	return o.Status == OrderStatusCreated
}

// Cancel moves the order from created to cancelled.
func (o *Order) Cancel(now time.Time) error {
	if !o.CanBeCancelled() {
		return fmt.Errorf("%w: order already cancelled", ErrInvalidState)
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = now
	return nil
}

type orderJSON struct {
	ID        int64           `json:"id"`
	Customer  string          `json:"customer"`
	Amount    decimal.Decimal `json:"amount"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderJSON{
		ID:        o.ID,
		Customer:  o.Customer,
		Amount:    o.Amount,
		Tax:       o.Tax(),
		Total:     o.Total(),
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	})
}
