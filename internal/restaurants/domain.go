package restaurants

import "time"

// Restaurant is the tenant boundary of the platform.
type Restaurant struct {
	ID        int64
	Name      string
	Slug      string
	OwnerID   int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Dashboard aggregates today's headline numbers for the owner view.
type Dashboard struct {
	OpenOrders        int64 `json:"openOrders"`
	ActiveTables      int64 `json:"activeTables"`
	RevenueTodayCents int64 `json:"revenueTodayCents"`
}
