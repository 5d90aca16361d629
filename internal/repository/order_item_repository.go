package repository

import (
	"context"
	"database/sql"

	"github.com/qrfood/eatery-backend/internal/model"
)

// OrderItemRepo encapsulates queries against the order_items table.
type OrderItemRepo struct{ DB *sql.DB }

func NewOrderItemRepo(db *sql.DB) *OrderItemRepo { return &OrderItemRepo{DB: db} }

// Create inserts one line into an order and populates the ID field.
func (r *OrderItemRepo) Create(ctx context.Context, it *model.OrderItem) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO order_items (order_id, dish_id, quantity, note) VALUES (?,?,?,?)",
		it.OrderID, it.DishID, it.Quantity, it.Note)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// GetByID fetches one order item.
func (r *OrderItemRepo) GetByID(ctx context.Context, id uint64) (model.OrderItem, error) {
	var it model.OrderItem
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, order_id, dish_id, quantity, note FROM order_items WHERE id=? LIMIT 1",
		id).Scan(&it.ID, &it.OrderID, &it.DishID, &it.Quantity, &it.Note)
	if err == sql.ErrNoRows {
		return it, ErrNotFound
	}
	return it, err
}

// EateryID resolves an order item to its owning eatery through the
// order -> table join, for ownership checks.
func (r *OrderItemRepo) EateryID(ctx context.Context, itemID uint64) (uint64, error) {
	var eateryID uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT t.eatery_id
		   FROM order_items oi
		   JOIN orders o ON o.id = oi.order_id
		   JOIN tables t ON t.id = o.table_id
		  WHERE oi.id=? LIMIT 1`,
		itemID).Scan(&eateryID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return eateryID, err
}

// ListByOrder returns all lines of one order.
func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, order_id, dish_id, quantity, note FROM order_items WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.DishID, &it.Quantity, &it.Note); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Update rewrites quantity and note of one line.
func (r *OrderItemRepo) Update(ctx context.Context, id uint64, quantity uint32, note string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE order_items SET quantity=?, note=? WHERE id=?", quantity, note, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one line.
func (r *OrderItemRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM order_items WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
