package model

import "time"

// OrderStatus is the closed lifecycle of a dine-in order.
type OrderStatus string

const (
	OrderCreated   OrderStatus = "CREATED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderServed    OrderStatus = "SERVED"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus validates a status string from a client payload.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderCreated, OrderPreparing, OrderReady, OrderServed, OrderPaid, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// CanSetStatus reports whether the role set may move an order into status.
// EATERY_ADMIN (and SUPER_ADMIN via HasAnyRole) may set anything; the other
// roles own their step of the flow.
func CanSetStatus(roles []Role, status OrderStatus) bool {
	if HasAnyRole(roles, RoleEateryAdmin) {
		return true
	}
	switch status {
	case OrderCreated, OrderServed:
		return HasAnyRole(roles, RoleWaiter)
	case OrderPreparing, OrderReady:
		return HasAnyRole(roles, RoleKitchenAdmin)
	case OrderPaid:
		return HasAnyRole(roles, RoleCashier)
	case OrderCancelled:
		return HasAnyRole(roles, RoleWaiter, RoleCashier)
	}
	return false
}

// Table is a physical table inside an eatery.  QRToken is the opaque value
// baked into the table's printed QR code; rendering the image itself is out
// of scope for this service.
type Table struct {
	ID        uint64
	EateryID  uint64
	Label     string
	QRToken   string
	CreatedAt time.Time
}

// Order is placed from one table.  The owning eatery is reached through the
// table (orders -> tables -> eateries).
type Order struct {
	ID        uint64
	TableID   uint64
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is one dish line inside an order.
type OrderItem struct {
	ID       uint64
	OrderID  uint64
	DishID   uint64
	Quantity uint32
	Note     string
}
