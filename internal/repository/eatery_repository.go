package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/qrfood/eatery-backend/internal/model"
)

// EateryRepo encapsulates queries against the eateries table.
type EateryRepo struct{ DB *sql.DB }

func NewEateryRepo(db *sql.DB) *EateryRepo { return &EateryRepo{DB: db} }

// GetByID fetches one eatery.
func (r *EateryRepo) GetByID(ctx context.Context, id uint64) (model.Eatery, error) {
	var e model.Eatery
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM eateries WHERE id=? LIMIT 1",
		id).Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	return e, err
}

// ListStalled returns eateries created before the cutoff that still have no
// menu categories.  The onboarding job nudges these owners.
func (r *EateryRepo) ListStalled(ctx context.Context, cutoff time.Time) ([]model.Eatery, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT e.id, e.name, e.created_at, e.updated_at
		   FROM eateries e
		   LEFT JOIN categories c ON c.eatery_id = e.id
		  WHERE e.created_at < ? AND c.id IS NULL`,
		cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Eatery
	for rows.Next() {
		var e model.Eatery
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
