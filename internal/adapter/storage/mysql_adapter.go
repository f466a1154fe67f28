package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/order-ledger/internal/core/domain"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS orders (
	id         BIGINT PRIMARY KEY,
	customer   VARCHAR(255) NOT NULL,
	amount     DECIMAL(19,4) NOT NULL,
	tax        DECIMAL(19,4) NOT NULL,
	total      DECIMAL(19,4) NOT NULL,
	status     VARCHAR(16) NOT NULL,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL
)`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) SaveOrder(ctx context.Context, order domain.Order) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO orders (id, customer, amount, tax, total, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			updated_at = IF(status = 'cancelled', updated_at, VALUES(updated_at)),
			status = IF(status = 'cancelled', status, VALUES(status))`,
		order.ID, order.Customer, order.Amount, order.Tax(), order.Total(), order.Status,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, customer, amount, status, created_at, updated_at
		FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Customer, &o.Amount, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
