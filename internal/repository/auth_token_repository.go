package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/utils"
)

// AuthTokenRepo persists single-use tokens (magic link, password reset) in
// the auth_tokens table.  Only the SHA-256 hash of a token is stored; the
// plaintext leaves this package exactly once, as Create's return value.
type AuthTokenRepo struct{ DB *sql.DB }

func NewAuthTokenRepo(db *sql.DB) *AuthTokenRepo { return &AuthTokenRepo{DB: db} }

// Create mints a random token of the given type for the user and returns
// the plaintext for one-time transmission (an email link).  The plaintext
// is not retrievable again.
func (r *AuthTokenRepo) Create(ctx context.Context, userID uint64, typ model.AuthTokenType, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	exp := time.Now().UTC().Add(ttl)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO auth_tokens (user_id, token_hash, token_type, expires_at) VALUES (?,?,?,?)",
		userID, utils.HashTokenRaw(token), string(typ), exp)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Consume validates a plaintext token and deletes its row in the same
// transaction, so a value can succeed at most once even under concurrent
// attempts.  Expired and wrong-type rows are deleted too: a token that
// reached the server is spent either way.
func (r *AuthTokenRepo) Consume(ctx context.Context, plaintext string, expected model.AuthTokenType) (uint64, error) {
	hash := utils.HashTokenRaw(plaintext)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var (
		userID uint64
		typ    string
		exp    time.Time
	)
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, token_type, expires_at FROM auth_tokens WHERE token_hash=? FOR UPDATE",
		hash).Scan(&userID, &typ, &exp)
	if err == sql.ErrNoRows {
		return 0, ErrAuthTokenNotFound
	}
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM auth_tokens WHERE token_hash=?", hash); err != nil {
		return 0, err
	}

	if time.Now().UTC().After(exp) {
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		return 0, ErrAuthTokenExpired
	}
	if model.AuthTokenType(typ) != expected {
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		return 0, ErrAuthTokenType
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return userID, nil
}

// DeleteForUser drops every outstanding single-use token for a user, used
// after a successful password reset.
func (r *AuthTokenRepo) DeleteForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM auth_tokens WHERE user_id=?", userID)
	return err
}
