package queue // package queue defines the events exchanged over RabbitMQ

import "time"

// Routing keys used on the events exchange.
const (
	KeyOrderPlaced     = "order.placed"
	KeyOrderStatus     = "order.status"
	KeyMagicLinkMail   = "mail.magic_link"
	KeyPasswordReset   = "mail.password_reset"
	KeyOnboardingNudge = "mail.onboarding_nudge"
)

// OrderPlacedEvent is published when a waiter opens a new order on a table.
type OrderPlacedEvent struct {
	OrderID  uint64    `json:"order_id"`
	EateryID uint64    `json:"eatery_id"`
	TableID  uint64    `json:"table_id"`
	PlacedBy uint64    `json:"placed_by"`
	At       time.Time `json:"at"`
}

// OrderStatusEvent is published on every order status transition so kitchen
// displays can follow along.
type OrderStatusEvent struct {
	OrderID  uint64    `json:"order_id"`
	EateryID uint64    `json:"eatery_id"`
	Status   string    `json:"status"`
	By       uint64    `json:"by"`
	At       time.Time `json:"at"`
}

// MailEvent carries a single-use token link for the mailer to deliver.  The
// token is included in plaintext only here; at rest only its hash exists.
type MailEvent struct {
	Email string    `json:"email"`
	Link  string    `json:"link"`
	At    time.Time `json:"at"`
}

// OnboardingNudgeEvent reminds an eatery owner who has not built a menu yet.
type OnboardingNudgeEvent struct {
	EateryID uint64    `json:"eatery_id"`
	Name     string    `json:"name"`
	At       time.Time `json:"at"`
}
