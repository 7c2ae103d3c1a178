package tables

import "time"

// Table is a dining table with a printed QR code. The QR token is the
// opaque identifier customers scan; it carries no meaning beyond lookup.
type Table struct {
	ID           int64
	RestaurantID int64
	Label        string
	QRToken      string
	Seats        int
	IsActive     bool
	CreatedAt    time.Time
}
