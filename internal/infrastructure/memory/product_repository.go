package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/minicart/orderflow/internal/domain/product"
)

// ProductRepository is an in-memory catalog. Writes are serialized by a
// mutex but there is no conditional update; two workflows racing on the
// same product can still oversell, as documented on the repository port.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
	}
}

// Seed loads products into the catalog, replacing any with the same id.
func (r *ProductRepository) Seed(products ...*domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range products {
		if p == nil || p.ID == "" {
			continue
		}
		r.products[p.ID] = p.Clone()
	}
}

// FindAllByID returns the catalog records matching the given ids. Unknown
// ids are skipped, so the result may be partial or empty.
func (r *ProductRepository) FindAllByID(ctx context.Context, ids []string) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]*domain.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.products[id]; ok {
			found = append(found, p.Clone())
		}
	}
	return found, nil
}

// UpdateQuantities applies the batch of absolute quantity writes. A negative
// quantity or an unknown product rejects the whole batch before any write.
func (r *ProductRepository) UpdateQuantities(ctx context.Context, updates []domain.QuantityUpdate) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range updates {
		if u.Quantity < 0 {
			return domain.ErrInvalidQuantity
		}
		if _, ok := r.products[u.ProductID]; !ok {
			return domain.ErrNoneFound
		}
	}

	now := time.Now().UTC()
	for _, u := range updates {
		p := r.products[u.ProductID]
		p.Quantity = u.Quantity
		p.UpdatedAt = now
	}
	return nil
}
