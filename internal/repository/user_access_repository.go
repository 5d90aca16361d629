package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/qrfood/eatery-backend/internal/model"
)

// UserAccessRepo manages the (user, eatery, role) bindings that make roles
// tenant-relative.  The table carries a unique index over the full triple.
type UserAccessRepo struct{ DB *sql.DB }

func NewUserAccessRepo(db *sql.DB) *UserAccessRepo { return &UserAccessRepo{DB: db} }

// Grant inserts one binding.  Granting the same triple twice returns
// ErrConflict.
func (r *UserAccessRepo) Grant(ctx context.Context, a model.UserAccess) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_access (user_id, eatery_id, role) VALUES (?,?,?)",
		a.UserID, a.EateryID, string(a.Role))
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// Revoke removes one binding.  Revoking a missing binding returns
// ErrNotFound so callers can report it.
func (r *UserAccessRepo) Revoke(ctx context.Context, userID, eateryID uint64, role model.Role) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_access WHERE user_id=? AND eatery_id=? AND role=?",
		userID, eateryID, string(role))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasAccess reports whether the user holds any binding for the eatery.
func (r *UserAccessRepo) HasAccess(ctx context.Context, userID, eateryID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM user_access WHERE user_id=? AND eatery_id=? LIMIT 1",
		userID, eateryID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RolesForEatery returns the roles the user holds inside one eatery.
func (r *UserAccessRepo) RolesForEatery(ctx context.Context, userID, eateryID uint64) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT role FROM user_access WHERE user_id=? AND eatery_id=?",
		userID, eateryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if role, ok := model.ParseRole(s); ok {
			roles = append(roles, role)
		}
	}
	return roles, rows.Err()
}

// EateriesForUser returns the distinct eatery ids the user is bound to, in
// ascending order so "first eatery" is a stable default at login.
func (r *UserAccessRepo) EateriesForUser(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT DISTINCT eatery_id FROM user_access WHERE user_id=? ORDER BY eatery_id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListStaff returns every binding for one eatery, joined with the user's
// email for display.
func (r *UserAccessRepo) ListStaff(ctx context.Context, eateryID uint64) ([]StaffEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT ua.user_id, u.email, ua.role
		   FROM user_access ua JOIN users u ON u.id = ua.user_id
		  WHERE ua.eatery_id=? ORDER BY ua.user_id`,
		eateryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StaffEntry
	for rows.Next() {
		var e StaffEntry
		var s string
		if err := rows.Scan(&e.UserID, &e.Email, &s); err != nil {
			return nil, err
		}
		if role, ok := model.ParseRole(s); ok {
			e.Role = role
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// StaffEntry is one user_access row joined with the user's email.
type StaffEntry struct {
	UserID uint64     `json:"user_id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}
