package repository

import (
	"context"
	"database/sql"

	"github.com/qrfood/eatery-backend/internal/model"
)

// OrderRepo encapsulates queries against the orders table.  An order's
// owning eatery is always reached through its table.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Create opens a new order in CREATED state and populates the ID field.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	o.Status = model.OrderCreated
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO orders (table_id, status) VALUES (?,?)",
		o.TableID, string(o.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// GetByID fetches one order.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	var (
		o model.Order
		s string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, table_id, status, created_at, updated_at FROM orders WHERE id=? LIMIT 1",
		id).Scan(&o.ID, &o.TableID, &s, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return o, ErrNotFound
	}
	if err != nil {
		return o, err
	}
	o.Status = model.OrderStatus(s)
	return o, nil
}

// EateryID resolves an order to its owning eatery through the table join,
// for ownership checks.
func (r *OrderRepo) EateryID(ctx context.Context, orderID uint64) (uint64, error) {
	var eateryID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT t.eatery_id FROM orders o JOIN tables t ON t.id = o.table_id WHERE o.id=? LIMIT 1",
		orderID).Scan(&eateryID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return eateryID, err
}

// ListByEatery returns all orders of one eatery, newest first.
func (r *OrderRepo) ListByEatery(ctx context.Context, eateryID uint64) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT o.id, o.table_id, o.status, o.created_at, o.updated_at
		   FROM orders o JOIN tables t ON t.id = o.table_id
		  WHERE t.eatery_id=? ORDER BY o.id DESC`,
		eateryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var (
			o model.Order
			s string
		)
		if err := rows.Scan(&o.ID, &o.TableID, &s, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = model.OrderStatus(s)
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order into a new status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=?", string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
