package model

import "time"

// Category groups dishes on an eatery's menu.  A category belongs to one
// eatery; deleting the eatery cascades to its categories and dishes.
type Category struct {
	ID        uint64
	EateryID  uint64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Dish is a single menu entry inside a category.  PriceCents avoids float
// money; DepartmentID optionally routes the dish to a kitchen department.
type Dish struct {
	ID           uint64
	CategoryID   uint64
	Name         string
	PriceCents   uint32
	DepartmentID *uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
