package menu

import "time"

// Category groups menu items for display.
type Category struct {
	ID           int64
	RestaurantID int64
	Name         string
	Position     int
}

// Item is one orderable dish or drink. Prices are integer cents.
type Item struct {
	ID           int64
	RestaurantID int64
	CategoryID   *int64
	Name         string
	Description  string
	PriceCents   int64
	IsAvailable  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
