package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrfood/eatery-backend/internal/repository"
)

// fixed fixture: category 1 belongs to eatery 1, dish 1 belongs to
// category 1, category 99 does not exist.
func menuChain() echo.MiddlewareFunc {
	categoryOf := func(ctx context.Context, categoryID uint64) (uint64, error) {
		if categoryID == 1 {
			return 1, nil
		}
		return 0, repository.ErrNotFound
	}
	dishOf := func(ctx context.Context, dishID uint64) (uint64, error) {
		if dishID == 1 {
			return 1, nil
		}
		return 0, repository.ErrNotFound
	}
	return OwnershipChain(
		ChainLink{ChildParam: "categoryId", ParentParam: "eateryId", Resolve: categoryOf},
		ChainLink{ChildParam: "dishId", ParentParam: "categoryId", Resolve: dishOf},
	)
}

func runChain(t *testing.T, mw echo.MiddlewareFunc, params map[string]string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, called
}

func TestOwnershipChainPass(t *testing.T) {
	rec, called := runChain(t, menuChain(), map[string]string{
		"eateryId": "1", "categoryId": "1", "dishId": "1",
	})
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOwnershipChainMismatch(t *testing.T) {
	// category 1 belongs to eatery 1, not eatery 2
	rec, called := runChain(t, menuChain(), map[string]string{
		"eateryId": "2", "categoryId": "1", "dishId": "1",
	})
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "RESOURCE_MISMATCH_OR_NOT_FOUND")
}

func TestOwnershipChainMissingChildSameAsMismatch(t *testing.T) {
	mismatch, _ := runChain(t, menuChain(), map[string]string{
		"eateryId": "2", "categoryId": "1",
	})
	missing, _ := runChain(t, menuChain(), map[string]string{
		"eateryId": "1", "categoryId": "99",
	})
	// probing a foreign category and probing a nonexistent one look identical
	assert.Equal(t, mismatch.Code, missing.Code)
	assert.Equal(t, mismatch.Body.String(), missing.Body.String())
}

func TestOwnershipChainSkipsSingleID(t *testing.T) {
	rec, called := runChain(t, menuChain(), map[string]string{"eateryId": "5"})
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOwnershipChainInvalidID(t *testing.T) {
	rec, called := runChain(t, menuChain(), map[string]string{
		"eateryId": "1", "categoryId": "abc",
	})
	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOwnershipChainMemberLink(t *testing.T) {
	member := func(ctx context.Context, userID, eateryID uint64) (bool, error) {
		return userID == 10 && eateryID == 1, nil
	}
	chain := OwnershipChain(
		ChainLink{ChildParam: "userId", ParentParam: "eateryId", Member: member},
	)

	rec, called := runChain(t, chain, map[string]string{"eateryId": "1", "userId": "10"})
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, called = runChain(t, chain, map[string]string{"eateryId": "1", "userId": "11"})
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
