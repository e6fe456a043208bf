package memory

import (
	"context"
	"sync"

	domain "github.com/minicart/orderflow/internal/domain/customer"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		customers: make(map[string]*domain.Customer),
	}
}

// Seed loads customers into the repository, replacing any with the same id.
func (r *CustomerRepository) Seed(customers ...*domain.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range customers {
		if c == nil || c.ID == "" {
			continue
		}
		r.customers[c.ID] = cloneCustomer(c)
	}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCustomer(c), nil
}

func cloneCustomer(c *domain.Customer) *domain.Customer {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
