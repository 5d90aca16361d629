package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
)

// ParentResolver maps a child id to the id of its direct (or, for collapsed
// joins, transitive) parent.  Implementations return repository.ErrNotFound
// when the child does not exist.
type ParentResolver func(ctx context.Context, childID uint64) (uint64, error)

// MemberResolver answers whether a child belongs to a given parent, for
// many-to-many links such as staff membership in an eatery.
type MemberResolver func(ctx context.Context, childID, parentID uint64) (bool, error)

// ChainLink describes one parent/child edge of an ownership chain in terms
// of the route's path parameter names.  Exactly one of Resolve or Member
// must be set.
type ChainLink struct {
	ChildParam  string
	ParentParam string
	Resolve     ParentResolver
	Member      MemberResolver
}

// OwnershipChain returns a middleware that validates that every identifier
// in the request path resolves to the ancestor named earlier in the same
// path.  Links whose parameters are not both present are skipped, so a
// route carrying a single id passes through unchecked.  The first failing
// link aborts the request with 403; a missing child and a mismatched child
// are deliberately indistinguishable, so probing cannot reveal whether a
// resource exists in another tenant.  Storage errors surface as a generic
// 500.  This middleware must run after JWTAuth and RequireRole.
func OwnershipChain(links ...ChainLink) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			for _, link := range links {
				childRaw := c.Param(link.ChildParam)
				parentRaw := c.Param(link.ParentParam)
				if childRaw == "" || parentRaw == "" {
					continue // fewer than two ids on this edge, nothing to check
				}
				childID, err := strconv.ParseUint(childRaw, 10, 64)
				if err != nil {
					return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid "+link.ChildParam)
				}
				parentID, err := strconv.ParseUint(parentRaw, 10, 64)
				if err != nil {
					return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid "+link.ParentParam)
				}

				switch {
				case link.Resolve != nil:
					actual, err := link.Resolve(ctx, childID)
					if errors.Is(err, repository.ErrNotFound) {
						return ownershipDenied(c)
					}
					if err != nil {
						return response.Internal(c)
					}
					if actual != parentID {
						return ownershipDenied(c)
					}
				case link.Member != nil:
					ok, err := link.Member(ctx, childID, parentID)
					if err != nil {
						return response.Internal(c)
					}
					if !ok {
						return ownershipDenied(c)
					}
				}
			}
			return next(c)
		}
	}
}

func ownershipDenied(c echo.Context) error {
	return response.Fail(c, http.StatusForbidden, response.CodeOwnershipMismatch,
		"access to resources that are unrelated or do not exist")
}
