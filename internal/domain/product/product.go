package product

import (
	"errors"
	"time"
)

var (
	ErrNoneFound         = errors.New("product: no products found")
	ErrInvalidQuantity   = errors.New("product: quantity must be zero or greater")
	ErrInsufficientStock = errors.New("product: insufficient stock")
)

// Product is a catalog record. Price is in the smallest currency unit.
type Product struct {
	ID        string
	Name      string
	Price     int64
	Quantity  int
	UpdatedAt time.Time
}

// HasStock reports whether the requested quantity can be taken from the
// available quantity. Full depletion is allowed.
func (p *Product) HasStock(requested int) bool {
	return requested <= p.Quantity
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// QuantityUpdate carries the new absolute quantity to write back to the
// catalog. It is a transient command, not a delta.
type QuantityUpdate struct {
	ProductID string
	Quantity  int
}
