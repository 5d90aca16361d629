// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers and middleware to distinguish between different failure
// scenarios without string matching.  Handlers translate them into the
// standard response envelope; the mapped status code is all a client ever
// sees, so a cross-tenant probe cannot tell "missing" from "not yours".
package repository

import "errors"

// ErrNotFound is returned when a looked-up row does not exist.  Resource
// handlers translate this into HTTP 404; the ownership middleware folds it
// into the same 403 as a mismatch.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert hits the unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as removing a dish that is still
// referenced by open order items.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// Refresh session failures.  Both map to HTTP 403 at the boundary.
var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
)

// Single-use token failures (magic link, password reset).
var (
	ErrAuthTokenNotFound = errors.New("single-use token not found")
	ErrAuthTokenExpired  = errors.New("single-use token expired")
	ErrAuthTokenType     = errors.New("single-use token type mismatch")
)
