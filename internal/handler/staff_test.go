package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrfood/eatery-backend/internal/middleware"
	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
)

// fakeStaff holds user_access bindings in memory.
type fakeStaff struct {
	bindings []model.UserAccess
}

func (f *fakeStaff) has(a model.UserAccess) bool {
	for _, b := range f.bindings {
		if b == a {
			return true
		}
	}
	return false
}

func (f *fakeStaff) ListStaff(_ context.Context, eateryID uint64) ([]repository.StaffEntry, error) {
	var out []repository.StaffEntry
	for _, b := range f.bindings {
		if b.EateryID == eateryID {
			out = append(out, repository.StaffEntry{UserID: b.UserID, Role: b.Role})
		}
	}
	return out, nil
}

func (f *fakeStaff) Grant(_ context.Context, a model.UserAccess) error {
	if f.has(a) {
		return repository.ErrConflict
	}
	f.bindings = append(f.bindings, a)
	return nil
}

func (f *fakeStaff) Revoke(_ context.Context, userID, eateryID uint64, role model.Role) error {
	for i, b := range f.bindings {
		if b.UserID == userID && b.EateryID == eateryID && b.Role == role {
			f.bindings = append(f.bindings[:i], f.bindings[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type staffFixture struct {
	h     *StaffHandler
	users *fakeUsers
	staff *fakeStaff
}

func newStaffFixture() *staffFixture {
	users := newFakeUsers()
	staff := &fakeStaff{}
	return &staffFixture{h: NewStaffHandler(staff, users), users: users, staff: staff}
}

// grantContext builds a POST /v1/eatery/:eateryId/staff request from an
// actor holding the given roles.
func grantContext(e *echo.Echo, eateryID uint64, body string, actorRoles ...model.Role) (echo.Context, *httptest.ResponseRecorder) {
	req, rec := jsonRequest(http.MethodPost, "/v1/eatery/1/staff", body)
	c := e.NewContext(req, rec)
	c.SetParamNames("eateryId")
	c.SetParamValues(strconv.FormatUint(eateryID, 10))
	middleware.SetAuth(c, middleware.AuthContext{UserID: 99, Roles: actorRoles, EateryID: &eateryID})
	return c, rec
}

func revokeContext(e *echo.Echo, eateryID, userID uint64, role string, actorRoles ...model.Role) (echo.Context, *httptest.ResponseRecorder) {
	req, rec := jsonRequest(http.MethodDelete, "/v1/eatery/1/staff/2?role="+role, "")
	c := e.NewContext(req, rec)
	c.SetParamNames("eateryId", "userId")
	c.SetParamValues(strconv.FormatUint(eateryID, 10), strconv.FormatUint(userID, 10))
	middleware.SetAuth(c, middleware.AuthContext{UserID: 99, Roles: actorRoles, EateryID: &eateryID})
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestGrantAboveOwnRoleRefused(t *testing.T) {
	cases := []struct {
		name  string
		actor model.Role
		grant model.Role
	}{
		{"waiter grants eatery admin", model.RoleWaiter, model.RoleEateryAdmin},
		{"waiter grants cashier", model.RoleWaiter, model.RoleCashier},
		{"cashier grants eatery admin", model.RoleCashier, model.RoleEateryAdmin},
		{"cashier grants kitchen admin", model.RoleCashier, model.RoleKitchenAdmin},
		{"kitchen admin grants eatery admin", model.RoleKitchenAdmin, model.RoleEateryAdmin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newStaffFixture()
			target := f.users.add("target@example.com", "pw123456")

			e := echo.New()
			c, rec := grantContext(e, 1,
				`{"userId":`+strconv.FormatUint(target.ID, 10)+`,"role":"`+string(tc.grant)+`"}`,
				tc.actor)
			require.NoError(t, f.h.Grant(c))

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, response.CodePrivilegeEscalation, decodeEnvelope(t, rec).Code)
			assert.Empty(t, f.staff.bindings, "refused grant must not be stored")
		})
	}
}

func TestGrantAtOrBelowOwnRole(t *testing.T) {
	cases := []struct {
		name  string
		actor model.Role
		grant model.Role
	}{
		{"eatery admin grants waiter", model.RoleEateryAdmin, model.RoleWaiter},
		{"eatery admin grants eatery admin", model.RoleEateryAdmin, model.RoleEateryAdmin},
		{"kitchen admin grants kitchen admin", model.RoleKitchenAdmin, model.RoleKitchenAdmin},
		{"cashier grants waiter", model.RoleCashier, model.RoleWaiter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newStaffFixture()
			target := f.users.add("target@example.com", "pw123456")

			e := echo.New()
			c, rec := grantContext(e, 1,
				`{"userId":`+strconv.FormatUint(target.ID, 10)+`,"role":"`+string(tc.grant)+`"}`,
				tc.actor)
			require.NoError(t, f.h.Grant(c))

			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.True(t, f.staff.has(model.UserAccess{UserID: target.ID, EateryID: 1, Role: tc.grant}))
		})
	}
}

func TestGrantSuperAdminBypassesCap(t *testing.T) {
	f := newStaffFixture()
	target := f.users.add("target@example.com", "pw123456")

	e := echo.New()
	c, rec := grantContext(e, 1,
		`{"userId":`+strconv.FormatUint(target.ID, 10)+`,"role":"EATERY_ADMIN"}`,
		model.RoleSuperAdmin)
	require.NoError(t, f.h.Grant(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, f.staff.has(model.UserAccess{UserID: target.ID, EateryID: 1, Role: model.RoleEateryAdmin}))
}

func TestGrantCapUsesHighestOfActorRoles(t *testing.T) {
	// An actor holding WAITER and KITCHEN_ADMIN is capped by KITCHEN_ADMIN.
	f := newStaffFixture()
	target := f.users.add("target@example.com", "pw123456")

	e := echo.New()
	c, rec := grantContext(e, 1,
		`{"userId":`+strconv.FormatUint(target.ID, 10)+`,"role":"KITCHEN_ADMIN"}`,
		model.RoleWaiter, model.RoleKitchenAdmin)
	require.NoError(t, f.h.Grant(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGrantUnknownUser(t *testing.T) {
	f := newStaffFixture()

	e := echo.New()
	c, rec := grantContext(e, 1, `{"userId":42,"role":"WAITER"}`, model.RoleEateryAdmin)
	require.NoError(t, f.h.Grant(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRevokeAboveOwnRoleRefused(t *testing.T) {
	cases := []struct {
		name   string
		actor  model.Role
		revoke model.Role
	}{
		{"waiter revokes eatery admin", model.RoleWaiter, model.RoleEateryAdmin},
		{"cashier revokes kitchen admin", model.RoleCashier, model.RoleKitchenAdmin},
		{"kitchen admin revokes eatery admin", model.RoleKitchenAdmin, model.RoleEateryAdmin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newStaffFixture()
			bound := model.UserAccess{UserID: 2, EateryID: 1, Role: tc.revoke}
			f.staff.bindings = append(f.staff.bindings, bound)

			e := echo.New()
			c, rec := revokeContext(e, 1, 2, string(tc.revoke), tc.actor)
			require.NoError(t, f.h.Revoke(c))

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, response.CodePrivilegeEscalation, decodeEnvelope(t, rec).Code)
			assert.True(t, f.staff.has(bound), "refused revoke must keep the binding")
		})
	}
}

func TestRevokeAtOrBelowOwnRole(t *testing.T) {
	f := newStaffFixture()
	f.staff.bindings = append(f.staff.bindings, model.UserAccess{UserID: 2, EateryID: 1, Role: model.RoleWaiter})

	e := echo.New()
	c, rec := revokeContext(e, 1, 2, "WAITER", model.RoleEateryAdmin)
	require.NoError(t, f.h.Revoke(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.staff.bindings)
}

func TestRevokeSuperAdminBypassesCap(t *testing.T) {
	f := newStaffFixture()
	f.staff.bindings = append(f.staff.bindings, model.UserAccess{UserID: 2, EateryID: 1, Role: model.RoleEateryAdmin})

	e := echo.New()
	c, rec := revokeContext(e, 1, 2, "EATERY_ADMIN", model.RoleSuperAdmin)
	require.NoError(t, f.h.Revoke(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.staff.bindings)
}

func TestRevokeMissingBinding(t *testing.T) {
	f := newStaffFixture()

	e := echo.New()
	c, rec := revokeContext(e, 1, 2, "WAITER", model.RoleEateryAdmin)
	require.NoError(t, f.h.Revoke(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
