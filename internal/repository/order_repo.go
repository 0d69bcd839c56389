package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/YoshikiFujii/FLcasher/internal/model"
)

type OrderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// InsertOrderWithItems writes the order header and its items in one
// transaction: either both commit or neither does. Returns the new order id.
func (r *OrderRepository) InsertOrderWithItems(ctx context.Context, o *model.Order, items []model.OrderItem) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (timestamp, total_amount, status, random_id, display_id, is_takeout) VALUES (?, ?, ?, ?, ?, ?)`,
		o.Timestamp, o.TotalAmount, o.Status, o.RandomID, o.DisplayID, o.IsTakeout,
	)
	if err != nil {
		return 0, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, price_at_sale) VALUES (?, ?, ?, ?, ?)`,
			orderID, it.ProductID, it.ProductName, it.Quantity, it.PriceAtSale,
		)
		if err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return orderID, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT id, timestamp, total_amount, status, random_id, display_id, is_takeout FROM orders WHERE id=?`
	var o model.Order
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&o.ID, &o.Timestamp, &o.TotalAmount, &o.Status, &o.RandomID, &o.DisplayID, &o.IsTakeout)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus sets the order's status unconditionally; setting the status
// an order already has is a no-op success.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE orders SET status=? WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStatus returns orders with the given status, oldest first, with
// their items attached.
func (r *OrderRepository) ListByStatus(ctx context.Context, status string) ([]model.OrderWithItems, error) {
	query := `SELECT id, timestamp, total_amount, status, random_id, display_id, is_takeout
		FROM orders WHERE status=? ORDER BY timestamp ASC`
	return r.queryWithItems(ctx, query, status)
}

// ListAll returns every order regardless of status, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]model.OrderWithItems, error) {
	query := `SELECT id, timestamp, total_amount, status, random_id, display_id, is_takeout
		FROM orders ORDER BY timestamp DESC`
	return r.queryWithItems(ctx, query)
}

// ListRange returns orders whose timestamp falls in [start, end], newest first.
func (r *OrderRepository) ListRange(ctx context.Context, start, end int64) ([]model.OrderWithItems, error) {
	query := `SELECT id, timestamp, total_amount, status, random_id, display_id, is_takeout
		FROM orders WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp DESC`
	return r.queryWithItems(ctx, query, start, end)
}

func (r *OrderRepository) queryWithItems(ctx context.Context, query string, args ...any) ([]model.OrderWithItems, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.OrderWithItems, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.Timestamp, &o.TotalAmount, &o.Status, &o.RandomID, &o.DisplayID, &o.IsTakeout); err != nil {
			return nil, err
		}
		out = append(out, model.OrderWithItems{Order: o, Items: make([]model.OrderItem, 0)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.itemsForOrder(ctx, out[i].Order.ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *OrderRepository) itemsForOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	query := `SELECT id, order_id, product_id, product_name, quantity, price_at_sale FROM order_items WHERE order_id=? ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceAtSale); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SumSince sums total_amount over orders created at or after since,
// excluding CANCELLED ones. Reflects the authoritative host state.
func (r *OrderRepository) SumSince(ctx context.Context, since int64) (int64, error) {
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE timestamp >= ? AND status != ?`
	var total int64
	if err := r.DB.QueryRowContext(ctx, query, since, model.StatusCancelled).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Delete removes the order; its items go with it via the FK cascade.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM orders WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
