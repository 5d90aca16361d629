package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Global roles live in the user_roles table and are advisory;
// the effective role inside an eatery comes from user_access.
//
// Fields:
//  ID           - primary key identifier of the user.
//  Email        - unique email address, also used as the login name.
//  PasswordHash - bcrypt hashed password; empty for magic-link-only accounts.
//  Roles        - global role set loaded from user_roles.
//  IsActive     - whether the account is active.
//  CreatedAt    - timestamp of creation.
//  UpdatedAt    - timestamp of last update.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Roles        []Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserAccess binds one role to one user inside one eatery.  The
// (user, eatery, role) triple is unique; a user may hold different roles
// in different eateries.
type UserAccess struct {
	UserID   uint64
	EateryID uint64
	Role     Role
}
