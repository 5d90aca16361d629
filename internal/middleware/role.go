package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/response"
)

// RequireRole returns a middleware that enforces that the authenticated
// principal holds at least one of the given roles.  SUPER_ADMIN passes any
// gate.  It assumes JWTAuth ran earlier on the chain; a request with no
// principal is rejected with 401.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth, ok := Auth(c)
			if !ok {
				return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "authentication required")
			}
			if !model.HasAnyRole(auth.Roles, roles...) {
				return response.Fail(c, http.StatusForbidden, response.CodeAccessDenied, "insufficient role")
			}
			return next(c)
		}
	}
}
