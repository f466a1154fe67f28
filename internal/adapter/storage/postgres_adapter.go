package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/order-ledger/internal/core/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS orders (
	id         BIGINT PRIMARY KEY,
	customer   TEXT NOT NULL,
	amount     NUMERIC(19,4) NOT NULL,
	tax        NUMERIC(19,4) NOT NULL,
	total      NUMERIC(19,4) NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresAdapter mirrors orders into PostgreSQL. The caller registers the
// lib/pq driver.
type PostgresAdapter struct {
	db *sql.DB
}

func NewPostgresAdapter(db *sql.DB) *PostgresAdapter {
	return &PostgresAdapter{db: db}
}

func (p *PostgresAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) SaveOrder(ctx context.Context, order domain.Order) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO orders (id, customer, amount, tax, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = CASE WHEN orders.status = 'cancelled' THEN orders.status ELSE EXCLUDED.status END,
			updated_at = CASE WHEN orders.status = 'cancelled' THEN orders.updated_at ELSE EXCLUDED.updated_at END`,
		order.ID, order.Customer, order.Amount, order.Tax(), order.Total(), order.Status,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, customer, amount, status, created_at, updated_at
		FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}
