package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/utils"
)

const testSecret = "middleware-test-secret"

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, called
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, called := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "TOKEN_INVALID")
}

func TestJWTAuthExpired(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 1, []model.Role{model.RoleWaiter}, nil, -1)
	require.NoError(t, err)

	rec, called := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

func TestJWTAuthAttachesPrincipal(t *testing.T) {
	eatery := uint64(7)
	tok, err := utils.NewAccessToken(testSecret, 42, []model.Role{model.RoleWaiter}, &eatery, 15)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got AuthContext
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		var ok bool
		got, ok = Auth(c)
		require.True(t, ok)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), got.UserID)
	assert.Equal(t, []model.Role{model.RoleWaiter}, got.Roles)
	require.NotNil(t, got.EateryID)
	assert.Equal(t, uint64(7), *got.EateryID)
}
