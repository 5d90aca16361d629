package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/qrfood/eatery-backend/internal/model"
)

// CategoryRepo encapsulates queries against the categories table.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Create inserts a category and populates the ID field.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (eatery_id, name) VALUES (?,?)",
		c.EateryID, c.Name)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches one category.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, eatery_id, name, created_at, updated_at FROM categories WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.EateryID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// EateryID resolves a category to its owning eatery, for ownership checks.
func (r *CategoryRepo) EateryID(ctx context.Context, categoryID uint64) (uint64, error) {
	var eateryID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT eatery_id FROM categories WHERE id=? LIMIT 1",
		categoryID).Scan(&eateryID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return eateryID, err
}

// ListByEatery returns all categories of one eatery.
func (r *CategoryRepo) ListByEatery(ctx context.Context, eateryID uint64) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, eatery_id, name, created_at, updated_at FROM categories WHERE eatery_id=? ORDER BY id",
		eateryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.EateryID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateName renames a category.
func (r *CategoryRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET name=? WHERE id=?", name, id)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a category.  The dishes foreign key cascades.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM categories WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
