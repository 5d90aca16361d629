// Package response defines the uniform envelope returned on every failure
// and on bare-acknowledgement successes.  Ownership, role and token failures
// all surface through the same shape, so a cross-tenant probe learns nothing
// beyond the mapped status code.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Stable machine-readable error codes.  Clients branch on these, so they
// must never be renamed once published.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeTokenInvalid        = "TOKEN_INVALID"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeRefreshTokenInvalid = "REFRESH_TOKEN_INVALID"
	CodeAccessDenied        = "ACCESS_DENIED"
	CodeEateryAccessDenied  = "EATERY_ACCESS_DENIED"
	CodeOwnershipMismatch   = "RESOURCE_MISMATCH_OR_NOT_FOUND"
	CodePrivilegeEscalation = "PRIVILEGE_ESCALATION_DENIED"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeNoSession           = "NO_ACTIVE_SESSION"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"
)

// Envelope is the wire shape of every failure response:
// {"success": false, "message": "...", "code": "..."}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Fail writes the standard failure envelope with the given HTTP status.
func Fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message, Code: code})
}

// OK writes a bare success acknowledgement for endpoints with no payload.
func OK(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Internal hides storage and other server-side failures behind a generic
// 500 so internals never leak to clients.
func Internal(c echo.Context) error {
	return Fail(c, http.StatusInternalServerError, CodeInternal, "internal error")
}
