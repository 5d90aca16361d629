package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/middleware"
	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
)

// StaffStore mutates and lists the user_access bindings of one eatery.
type StaffStore interface {
	ListStaff(ctx context.Context, eateryID uint64) ([]repository.StaffEntry, error)
	Grant(ctx context.Context, a model.UserAccess) error
	Revoke(ctx context.Context, userID, eateryID uint64, role model.Role) error
}

// StaffHandler manages the user_access bindings of an eatery: who works
// there and in which role.  Nobody can hand out a role above their own
// highest.
type StaffHandler struct {
	Access StaffStore
	Users  UserStore
}

func NewStaffHandler(access StaffStore, users UserStore) *StaffHandler {
	return &StaffHandler{Access: access, Users: users}
}

// List handles GET /v1/eatery/:eateryId/staff.
func (h *StaffHandler) List(c echo.Context) error {
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	items, err := h.Access.ListStaff(c.Request().Context(), eateryID)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Grant handles POST /v1/eatery/:eateryId/staff.  The caller's highest role
// caps what they may hand out; a SUPER_ADMIN is never capped.
func (h *StaffHandler) Grant(c echo.Context) error {
	auth, ok := middleware.Auth(c)
	if !ok {
		return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "authentication required")
	}
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	var body struct {
		UserID uint64 `json:"userId"`
		Role   string `json:"role"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == 0 {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "userId is required")
	}
	role, ok := model.ParseRole(body.Role)
	if !ok {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "unknown role")
	}

	if !model.HasAnyRole(auth.Roles, model.RoleSuperAdmin) {
		highest, _ := model.HighestRole(auth.Roles)
		if model.CompareRoles(role, highest) > 0 {
			return response.Fail(c, http.StatusForbidden, response.CodePrivilegeEscalation,
				"cannot grant a role above your own")
		}
	}

	reqCtx := c.Request().Context()
	if _, err := h.Users.GetByID(reqCtx, body.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "user not found")
		}
		return response.Internal(c)
	}
	err = h.Access.Grant(reqCtx, model.UserAccess{UserID: body.UserID, EateryID: eateryID, Role: role})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return response.Fail(c, http.StatusConflict, response.CodeConflict, "binding already exists")
		}
		return response.Internal(c)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"userId":   body.UserID,
		"eateryId": eateryID,
		"role":     role,
	})
}

// Revoke handles DELETE /v1/eatery/:eateryId/staff/:userId.  The role to
// drop comes from the query string; removing a binding above the caller's
// own highest role is refused the same way as granting one.
func (h *StaffHandler) Revoke(c echo.Context) error {
	auth, ok := middleware.Auth(c)
	if !ok {
		return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "authentication required")
	}
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid user id")
	}
	role, ok := model.ParseRole(c.QueryParam("role"))
	if !ok {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "unknown role")
	}

	if !model.HasAnyRole(auth.Roles, model.RoleSuperAdmin) {
		highest, _ := model.HighestRole(auth.Roles)
		if model.CompareRoles(role, highest) > 0 {
			return response.Fail(c, http.StatusForbidden, response.CodePrivilegeEscalation,
				"cannot revoke a role above your own")
		}
	}

	if err := h.Access.Revoke(c.Request().Context(), userID, eateryID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "binding not found")
		}
		return response.Internal(c)
	}
	return response.OK(c, "binding removed")
}
