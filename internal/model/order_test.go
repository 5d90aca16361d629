package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanSetStatus(t *testing.T) {
	tests := []struct {
		name   string
		roles  []Role
		status OrderStatus
		want   bool
	}{
		{"waiter creates", []Role{RoleWaiter}, OrderCreated, true},
		{"waiter serves", []Role{RoleWaiter}, OrderServed, true},
		{"waiter cannot mark paid", []Role{RoleWaiter}, OrderPaid, false},
		{"waiter cannot mark ready", []Role{RoleWaiter}, OrderReady, false},
		{"kitchen prepares", []Role{RoleKitchenAdmin}, OrderPreparing, true},
		{"kitchen readies", []Role{RoleKitchenAdmin}, OrderReady, true},
		{"kitchen cannot cancel", []Role{RoleKitchenAdmin}, OrderCancelled, false},
		{"cashier marks paid", []Role{RoleCashier}, OrderPaid, true},
		{"cashier cancels", []Role{RoleCashier}, OrderCancelled, true},
		{"waiter cancels", []Role{RoleWaiter}, OrderCancelled, true},
		{"eatery admin sets anything", []Role{RoleEateryAdmin}, OrderPaid, true},
		{"super admin sets anything", []Role{RoleSuperAdmin}, OrderPreparing, true},
		{"no roles", nil, OrderCreated, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSetStatus(tt.roles, tt.status))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus("PREPARING")
	assert.True(t, ok)
	assert.Equal(t, OrderPreparing, s)

	_, ok = ParseOrderStatus("preparing")
	assert.False(t, ok)
	_, ok = ParseOrderStatus("BURNED")
	assert.False(t, ok)
}
