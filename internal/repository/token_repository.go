package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh sessions.  Each user holds at most one row
// (unique user_id); the token value is stored as a SHA-256 hash in the
// token_hash column together with the active eatery selection.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// RefreshSession is a decoded refresh_tokens row.
type RefreshSession struct {
	UserID    uint64
	EateryID  *uint64
	ExpiresAt time.Time
}

// Replace installs a new refresh session for the user, deleting any prior
// one inside the same transaction.  A second login therefore kills the
// first session's token.
func (r *TokenRepo) Replace(ctx context.Context, userID uint64, tokenHash string, eateryID *uint64, exp time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, eatery_id, expires_at) VALUES (?,?,?,?)",
		userID, tokenHash, eateryID, exp); err != nil {
		return err
	}
	return tx.Commit()
}

// Lookup resolves a token hash to its session.  Expired rows are deleted on
// sight and reported as ErrRefreshTokenExpired; absent rows as
// ErrRefreshTokenNotFound.
func (r *TokenRepo) Lookup(ctx context.Context, tokenHash string) (RefreshSession, error) {
	var (
		s        RefreshSession
		eateryID sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, eatery_id, expires_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&s.UserID, &eateryID, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return RefreshSession{}, ErrRefreshTokenNotFound
	}
	if err != nil {
		return RefreshSession{}, err
	}
	if eateryID.Valid {
		id := uint64(eateryID.Int64)
		s.EateryID = &id
	}
	if time.Now().UTC().After(s.ExpiresAt) {
		_, _ = r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
		return RefreshSession{}, ErrRefreshTokenExpired
	}
	return s, nil
}

// SwitchEatery updates the user's session to a new active eatery and a new
// token value in one transaction.  The row is locked first so two
// concurrent switches cannot interleave and leave the stored context and
// the minted access token pointing at different eateries.
func (r *TokenRepo) SwitchEatery(ctx context.Context, userID uint64, newHash string, eateryID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exp time.Time
	err = tx.QueryRowContext(ctx,
		"SELECT expires_at FROM refresh_tokens WHERE user_id=? FOR UPDATE",
		userID).Scan(&exp)
	if err == sql.ErrNoRows {
		return ErrRefreshTokenNotFound
	}
	if err != nil {
		return err
	}
	if time.Now().UTC().After(exp) {
		return ErrRefreshTokenExpired
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET token_hash=?, eatery_id=? WHERE user_id=?",
		newHash, eateryID, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteForUser removes the user's session.  Deleting a missing row is not
// an error; logout is idempotent.
func (r *TokenRepo) DeleteForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
