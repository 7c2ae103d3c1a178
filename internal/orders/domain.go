package orders

import (
	"time"

	"github.com/qrserve/qrserve/internal/shared"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCancelled Status = "cancelled"
)

// transitions lists the allowed next states per state. Cancellation stays
// open until the order is served; terminal states map to an empty set.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed, StatusCancelled},
	StatusServed:    {},
	StatusCancelled: {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// kitchenStatuses are the states shown on the kitchen board.
var kitchenStatuses = []Status{StatusConfirmed, StatusPreparing, StatusReady}

// Order is a customer order placed from a table.
type Order struct {
	ID           int64
	RestaurantID int64
	TableID      int64
	TableLabel   string
	Status       Status
	Note         string
	TotalCents   int64
	Lines        []Line
	PlacedAt     time.Time
	UpdatedAt    time.Time
}

// Line is one item position in an order. Unit price is captured at order
// time, so later menu edits never change what a guest owes.
type Line struct {
	ID             int64
	OrderID        int64
	MenuItemID     int64
	Name           string
	Quantity       int
	UnitPriceCents int64
}

// LineTotal returns quantity times the captured unit price.
func (l Line) LineTotal() int64 {
	return int64(l.Quantity) * l.UnitPriceCents
}

// ValidateTransition checks a requested status change.
func ValidateTransition(from, to Status) error {
	if !to.Valid() {
		return shared.ErrValidation
	}
	if !from.CanTransitionTo(to) {
		return shared.ErrValidation
	}
	return nil
}
