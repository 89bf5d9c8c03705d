package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberline/glowmart/internal/domain/order"
	"github.com/emberline/glowmart/internal/domain/user"
)

const (
	orderColumns = `id, user_id, items, shipping_address, order_number,
		payment_status, payment_method, retail_price, total_price, currency,
		status, delivered_at, created_at, updated_at`

	createOrderSQL = `INSERT INTO orders (id, user_id, items, shipping_address, order_number,
		payment_status, payment_method, retail_price, total_price, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	bumpProductSoldSQL = `UPDATE products
		SET total_sold = total_sold + $2, updated_at = now()
		WHERE id = $1`

	appendOrderToUserSQL = `UPDATE users
		SET orders = array_append(orders, $2), updated_at = now()
		WHERE id = $1`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	updateOrderStatusSQL = `UPDATE orders
		SET status = $2,
		    delivered_at = CASE WHEN $2 = 'Delivered' THEN now() ELSE delivered_at END,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns

	updateOrderPaymentSQL = `UPDATE orders
		SET payment_status = $2, payment_method = $3, total_price = $4,
		    currency = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1 RETURNING ` + orderColumns

	orderStatsSQL = `SELECT count(*),
		COALESCE(MAX(total_price), 0), COALESCE(AVG(total_price), 0),
		COALESCE(MIN(total_price), 0), COALESCE(SUM(total_price), 0),
		COALESCE(SUM(total_price) FILTER (WHERE created_at >= $1), 0)
		FROM orders`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order, bumps each product's sold counter, and links
// the order to its user, all in one transaction. Line items referencing
// unknown products are skipped.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encoding order items: %w", err)
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encoding shipping address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, items, addr, o.OrderNumber,
		o.PaymentStatus, o.PaymentMethod, o.RetailPrice, o.TotalPrice, o.Currency, o.Status,
	)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, bumpProductSoldSQL, it.ProductID, it.Qty); err != nil {
			return fmt.Errorf("bumping sold counter for product %q: %w", it.ProductID, err)
		}
	}

	if _, err := tx.Exec(ctx, appendOrderToUserSQL, o.UserID, o.ID); err != nil {
		return fmt.Errorf("linking order to user %q: %w", o.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order transaction: %w", err)
	}
	return nil
}

// GetByID returns the order with the given id, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return r.getOne(ctx, getOrderByIDSQL, id)
}

// List returns one page of orders plus the total count.
func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]order.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, listOrdersSQL, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("scanning orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus moves the order to a new fulfillment state, stamping
// delivered_at when it reaches Delivered.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, s order.Status) (*order.Order, error) {
	return r.getOne(ctx, updateOrderStatusSQL, id, string(s))
}

// UpdatePayment overwrites the payment fields and total price from a
// settlement report. Redelivered events converge to the same row state.
func (r *OrderRepository) UpdatePayment(ctx context.Context, id string, p order.PaymentUpdate) (*order.Order, error) {
	return r.getOne(ctx, updateOrderPaymentSQL,
		id, p.Status, p.Method, p.AmountMajor(), p.Currency,
	)
}

// Delete removes the order and returns it, or order.ErrNotFound.
func (r *OrderRepository) Delete(ctx context.Context, id string) (*order.Order, error) {
	return r.getOne(ctx, deleteOrderSQL, id)
}

// Stats aggregates total price across all orders. todayStart bounds the
// "sales today" sum.
func (r *OrderRepository) Stats(ctx context.Context, todayStart time.Time) (*order.Stats, error) {
	var s order.Stats
	err := r.pool.QueryRow(ctx, orderStatsSQL, todayStart).
		Scan(&s.Count, &s.Max, &s.Avg, &s.Min, &s.Sum, &s.TodaySum)
	if err != nil {
		return nil, fmt.Errorf("aggregating order stats: %w", err)
	}
	return &s, nil
}

func (r *OrderRepository) getOne(ctx context.Context, sql string, args ...any) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order: %w", err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		items []byte
		addr  []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &items, &addr, &o.OrderNumber,
		&o.PaymentStatus, &o.PaymentMethod, &o.RetailPrice, &o.TotalPrice, &o.Currency,
		&o.Status, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("decoding order items: %w", err)
	}
	var sa user.ShippingAddress
	if err := json.Unmarshal(addr, &sa); err != nil {
		return order.Order{}, fmt.Errorf("decoding shipping address: %w", err)
	}
	o.ShippingAddress = sa
	return o, nil
}
