package order

import "context"

// Repository is the order store collaborator. Create persists a new order
// for the given customer and line items and returns the stored
// representation with its generated id and timestamps.
type Repository interface {
	Create(ctx context.Context, customerID string, items []LineItem) (*Order, error)
}
