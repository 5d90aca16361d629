package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareRoles(t *testing.T) {
	tests := []struct {
		name string
		a, b Role
		want int
	}{
		{"super outranks admin", RoleSuperAdmin, RoleEateryAdmin, 1},
		{"admin outranks kitchen", RoleEateryAdmin, RoleKitchenAdmin, 1},
		{"kitchen outranks cashier", RoleKitchenAdmin, RoleCashier, 1},
		{"cashier outranks waiter", RoleCashier, RoleWaiter, 1},
		{"waiter loses to super", RoleWaiter, RoleSuperAdmin, -1},
		{"equal roles", RoleCashier, RoleCashier, 0},
		{"unknown loses to known", Role("JANITOR"), RoleWaiter, -1},
		{"known beats unknown", RoleWaiter, Role("JANITOR"), 1},
		{"two unknowns equal", Role("JANITOR"), Role("INTERN"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareRoles(tt.a, tt.b))
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	assert.True(t, HasAnyRole([]Role{RoleWaiter}, RoleWaiter))
	assert.False(t, HasAnyRole([]Role{RoleWaiter}, RoleCashier))
	assert.True(t, HasAnyRole([]Role{RoleCashier, RoleWaiter}, RoleWaiter))

	// SUPER_ADMIN passes any gate, even one it is not listed in
	assert.True(t, HasAnyRole([]Role{RoleSuperAdmin}, RoleWaiter))
	assert.True(t, HasAnyRole([]Role{RoleSuperAdmin}))

	assert.False(t, HasAnyRole(nil, RoleWaiter))
	assert.False(t, HasAnyRole([]Role{Role("JANITOR")}, RoleWaiter))
}

func TestHighestRole(t *testing.T) {
	r, ok := HighestRole([]Role{RoleWaiter, RoleEateryAdmin, RoleCashier})
	assert.True(t, ok)
	assert.Equal(t, RoleEateryAdmin, r)

	_, ok = HighestRole(nil)
	assert.False(t, ok)

	_, ok = HighestRole([]Role{Role("JANITOR")})
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("KITCHEN_ADMIN")
	assert.True(t, ok)
	assert.Equal(t, RoleKitchenAdmin, r)

	_, ok = ParseRole("kitchen_admin")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestRolesFromStrings(t *testing.T) {
	roles := RolesFromStrings([]string{"WAITER", "JANITOR", "CASHIER"})
	assert.Equal(t, []Role{RoleWaiter, RoleCashier}, roles)
}
