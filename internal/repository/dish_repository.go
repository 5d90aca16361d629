package repository

import (
	"context"
	"database/sql"

	"github.com/qrfood/eatery-backend/internal/model"
)

// DishRepo encapsulates queries against the dishes table.
type DishRepo struct{ DB *sql.DB }

func NewDishRepo(db *sql.DB) *DishRepo { return &DishRepo{DB: db} }

// Create inserts a dish and populates the ID field.
func (r *DishRepo) Create(ctx context.Context, d *model.Dish) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO dishes (category_id, name, price_cents, department_id) VALUES (?,?,?,?)",
		d.CategoryID, d.Name, d.PriceCents, d.DepartmentID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches one dish.
func (r *DishRepo) GetByID(ctx context.Context, id uint64) (model.Dish, error) {
	var (
		d    model.Dish
		dept sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, category_id, name, price_cents, department_id, created_at, updated_at FROM dishes WHERE id=? LIMIT 1",
		id).Scan(&d.ID, &d.CategoryID, &d.Name, &d.PriceCents, &dept, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	if err != nil {
		return d, err
	}
	if dept.Valid {
		v := uint64(dept.Int64)
		d.DepartmentID = &v
	}
	return d, nil
}

// CategoryID resolves a dish to its owning category, for ownership checks.
func (r *DishRepo) CategoryID(ctx context.Context, dishID uint64) (uint64, error) {
	var categoryID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT category_id FROM dishes WHERE id=? LIMIT 1",
		dishID).Scan(&categoryID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return categoryID, err
}

// EateryID resolves a dish all the way to its owning eatery through the
// category join.
func (r *DishRepo) EateryID(ctx context.Context, dishID uint64) (uint64, error) {
	var eateryID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT c.eatery_id FROM dishes d JOIN categories c ON c.id = d.category_id WHERE d.id=? LIMIT 1",
		dishID).Scan(&eateryID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return eateryID, err
}

// ListByCategory returns all dishes of one category.
func (r *DishRepo) ListByCategory(ctx context.Context, categoryID uint64) ([]model.Dish, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, category_id, name, price_cents, department_id, created_at, updated_at FROM dishes WHERE category_id=? ORDER BY id",
		categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Dish
	for rows.Next() {
		var (
			d    model.Dish
			dept sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.CategoryID, &d.Name, &d.PriceCents, &dept, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if dept.Valid {
			v := uint64(dept.Int64)
			d.DepartmentID = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update rewrites name and price.
func (r *DishRepo) Update(ctx context.Context, id uint64, name string, priceCents uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE dishes SET name=?, price_cents=? WHERE id=?", name, priceCents, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a dish.  Fails with ErrConflict when open order items
// still reference it.
func (r *DishRepo) Delete(ctx context.Context, id uint64) error {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM order_items oi JOIN orders o ON o.id = oi.order_id
		  WHERE oi.dish_id=? AND o.status NOT IN ('PAID','CANCELLED') LIMIT 1`,
		id).Scan(&one)
	if err == nil {
		return ErrConflict
	}
	if err != sql.ErrNoRows {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM dishes WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
