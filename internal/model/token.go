package model

import "time"

// AuthTokenType tags a single-use token row.
type AuthTokenType string

const (
	TokenMagicLink     AuthTokenType = "MAGIC_LINK"
	TokenPasswordReset AuthTokenType = "PASSWORD_RESET"
)

// RefreshToken models the one long-lived session row a user may hold in the
// `refresh_tokens` table.  Only the SHA-256 hash of the value is stored;
// EateryID records the tenant context selected at the last login or switch.
//
// Fields:
//  UserID    - owner of the session; unique, one live session per user.
//  TokenHash - SHA-256 hex digest of the raw token value.
//  EateryID  - active eatery selection, nil when none was chosen.
//  ExpiresAt - expiration timestamp of the session.
//  CreatedAt - timestamp of creation.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	EateryID  *uint64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthToken models a single-use token row (magic link or password reset) in
// the `auth_tokens` table.  The plaintext is never persisted; the row is
// deleted in the same transaction that validates it, so a value can never
// be consumed twice.
type AuthToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	Type      AuthTokenType
	ExpiresAt time.Time
}
