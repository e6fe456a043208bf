package customer

import "errors"

var ErrNotFound = errors.New("customer: not found")

// Customer is a read-only reference into the customer bounded context.
// The order workflow only needs its identity.
type Customer struct {
	ID    string
	Name  string
	Email string
}
