package repository

import (
	"context"
	"database/sql"
)

// NotificationLogRepo records which notifications have already been sent.
// The onboarding job consults it before each send so overlapping runs stay
// idempotent.
type NotificationLogRepo struct{ DB *sql.DB }

func NewNotificationLogRepo(db *sql.DB) *NotificationLogRepo {
	return &NotificationLogRepo{DB: db}
}

// WasSent reports whether a notification of the given kind was already
// recorded for the eatery.
func (r *NotificationLogRepo) WasSent(ctx context.Context, eateryID uint64, kind string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM notification_log WHERE eatery_id=? AND kind=? LIMIT 1",
		eateryID, kind).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Record stores one sent notification.
func (r *NotificationLogRepo) Record(ctx context.Context, eateryID uint64, kind string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO notification_log (eatery_id, kind) VALUES (?,?)",
		eateryID, kind)
	return err
}
