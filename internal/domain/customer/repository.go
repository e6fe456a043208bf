package customer

import "context"

// Repository resolves customers by id. Absent customers are reported
// as ErrNotFound; any other error is an infrastructure failure.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Customer, error)
}
