package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/minicart/orderflow/internal/domain/order"
)

// IDGenerator supplies identifiers for newly created orders.
type IDGenerator interface {
	NewID() string
}

type OrderRepository struct {
	mu          sync.RWMutex
	orders      map[string]*domain.Order
	idGenerator IDGenerator
}

func NewOrderRepository(idGen IDGenerator) *OrderRepository {
	return &OrderRepository{
		orders:      make(map[string]*domain.Order),
		idGenerator: idGen,
	}
}

// Create persists a new order, assigning its id and timestamps. The stored
// copy is detached from both the input and the returned value.
func (r *OrderRepository) Create(ctx context.Context, customerID string, items []domain.LineItem) (*domain.Order, error) {
	_ = ctx
	if customerID == "" {
		return nil, domain.ErrInvalidCustomer
	}
	if len(items) == 0 {
		return nil, domain.ErrNoLineItems
	}

	now := time.Now().UTC()
	entity := &domain.Order{
		ID:         r.idGenerator.NewID(),
		CustomerID: customerID,
		LineItems:  append([]domain.LineItem(nil), items...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[entity.ID]; exists {
		return nil, fmt.Errorf("order repository: duplicate id %q", entity.ID)
	}
	r.orders[entity.ID] = entity.Clone()

	return entity, nil
}

// Get returns a stored order by id.
func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o.Clone(), nil
}
