package payments

import "time"

// Method is how a guest settled the bill. Recording is bookkeeping only,
// no processor integration sits behind these values.
type Method string

const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
)

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	return m == MethodCash || m == MethodCard
}

// Payment is a recorded settlement of one order.
type Payment struct {
	ID           int64
	RestaurantID int64
	OrderID      int64
	AmountCents  int64
	Method       Method
	RecordedBy   int64
	ReceiptPath  string
	RecordedAt   time.Time
}
