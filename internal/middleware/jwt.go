package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/response"
	"github.com/qrfood/eatery-backend/internal/utils"
)

// authContextKey is the echo.Context key the verified principal is stored
// under.  It lives and dies with the request; nothing global.
const authContextKey = "auth"

// AuthContext is the per-request principal derived from a verified access
// token: who is calling, which roles they hold and which eatery they are
// acting in.  It is populated by JWTAuth and consumed by the role and
// ownership middleware and by handlers.
type AuthContext struct {
	UserID   uint64
	Roles    []model.Role
	EateryID *uint64
}

// Auth returns the principal attached to the request, or false when the
// request did not pass JWTAuth.
func Auth(c echo.Context) (AuthContext, bool) {
	v, ok := c.Get(authContextKey).(AuthContext)
	return v, ok
}

// SetAuth stores a principal on the context.  Exported for handler tests
// that exercise protected handlers without running the full middleware
// chain.
func SetAuth(c echo.Context, a AuthContext) {
	c.Set(authContextKey, a)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and attaches the decoded AuthContext to the request.  The provided secret
// must match the one used when issuing tokens.  Expired tokens and invalid
// tokens both map to 401; the code distinguishes them for clients that want
// to trigger a silent refresh.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return response.Fail(c, http.StatusUnauthorized, response.CodeTokenExpired, "token expired")
				}
				return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "invalid token")
			}

			SetAuth(c, AuthContext{
				UserID:   claims.UserID,
				Roles:    claims.Roles,
				EateryID: claims.EateryID,
			})
			return next(c)
		}
	}
}
