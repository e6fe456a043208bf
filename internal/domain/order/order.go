package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrNoLineItems     = errors.New("order: at least one line item is required")
	ErrInvalidCustomer = errors.New("order: customer id is required")
)

// LineItem is a single product position on an order. Price is the unit
// price captured at order-creation time; later catalog price changes must
// not alter it.
type LineItem struct {
	ProductID string
	Price     int64
	Quantity  int
}

// Order is the persisted aggregate. ID and timestamps are assigned by the
// order store on creation; the workflow never mutates an order afterwards.
type Order struct {
	ID         string
	CustomerID string
	LineItems  []LineItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Total sums price times quantity over all line items.
func (o *Order) Total() int64 {
	var total int64
	for _, li := range o.LineItems {
		total += li.Price * int64(li.Quantity)
	}
	return total
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.LineItems = append([]LineItem(nil), o.LineItems...)
	return &clone
}
