package model

import "time"

// Eatery is the tenant root.  Every other tenant-scoped entity resolves to
// exactly one eatery through its ownership chain.  This struct corresponds
// to a row in the `eateries` table.
type Eatery struct {
	ID        uint64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KitchenDepartment is a preparation station inside an eatery (grill, bar,
// desserts).  Dishes may be routed to a department for the kitchen screen.
type KitchenDepartment struct {
	ID       uint64
	EateryID uint64
	Name     string
}
