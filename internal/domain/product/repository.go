package product

import "context"

// Repository is the catalog collaborator.
//
// FindAllByID resolves the given ids in a single batch; ids not present in
// the catalog are simply absent from the result, so the response may be
// partial or empty.
//
// UpdateQuantities applies the full batch of absolute quantity writes in one
// call. The workflow computes new quantities from the same read it validated
// against; any stronger guarantee under concurrent invocations (conditional
// writes, row locks, a serializable transaction) must come from the
// implementation behind this interface.
type Repository interface {
	FindAllByID(ctx context.Context, ids []string) ([]*Product, error)
	UpdateQuantities(ctx context.Context, updates []QuantityUpdate) error
}
