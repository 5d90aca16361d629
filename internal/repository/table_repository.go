package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/qrfood/eatery-backend/internal/model"
)

// TableRepo encapsulates queries against the tables table.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

// Create inserts a table row and populates the ID field.  QRToken must be
// unique across all eateries; it is the value encoded in the printed code.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tables (eatery_id, label, qr_token) VALUES (?,?,?)",
		t.EateryID, t.Label, t.QRToken)
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
	t.ID = uint64(id)
	return nil
}

// GetByID fetches one table.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (model.Table, error) {
	var t model.Table
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, eatery_id, label, qr_token, created_at FROM tables WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.EateryID, &t.Label, &t.QRToken, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	return t, err
}

// EateryID resolves a table to its owning eatery, for ownership checks.
func (r *TableRepo) EateryID(ctx context.Context, tableID uint64) (uint64, error) {
	var eateryID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT eatery_id FROM tables WHERE id=? LIMIT 1",
		tableID).Scan(&eateryID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return eateryID, err
}

// ListByEatery returns all tables of one eatery.
func (r *TableRepo) ListByEatery(ctx context.Context, eateryID uint64) ([]model.Table, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, eatery_id, label, qr_token, created_at FROM tables WHERE eatery_id=? ORDER BY id",
		eateryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.EateryID, &t.Label, &t.QRToken, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a table.  Fails with ErrConflict while unfinished orders
// still reference it.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM orders WHERE table_id=? AND status NOT IN ('PAID','CANCELLED') LIMIT 1",
		id).Scan(&one)
	if err == nil {
		return ErrConflict
	}
	if err != sql.ErrNoRows {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tables WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
