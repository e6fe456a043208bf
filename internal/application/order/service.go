package order

import (
	"context"
	"errors"
	"fmt"

	domcustomer "github.com/minicart/orderflow/internal/domain/customer"
	domain "github.com/minicart/orderflow/internal/domain/order"
	domproduct "github.com/minicart/orderflow/internal/domain/product"
	"github.com/minicart/orderflow/internal/observability"
	"github.com/minicart/orderflow/internal/observability/logctx"
)

var (
	ErrCustomerNotFound  = domcustomer.ErrNotFound
	ErrProductsNotFound  = domproduct.ErrNoneFound
	ErrInsufficientStock = domproduct.ErrInsufficientStock
	// ErrCollaborator wraps any failure coming out of a collaborator call
	// (resolver, catalog, order store). The workflow never retries.
	ErrCollaborator = errors.New("order: collaborator failure")
)

// Service runs the order-creation workflow: resolve the customer, validate
// product availability against one batch catalog read, decrement stock, and
// persist the order. Any validation failure aborts before the first write.
type Service struct {
	customers domcustomer.Repository
	catalog   domproduct.Repository
	orders    domain.Repository
	log       observability.Logger
}

func NewService(
	customers domcustomer.Repository,
	catalog domproduct.Repository,
	orders domain.Repository,
	logger observability.Logger,
) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		log:       logger.With(observability.F("component", "order_service")),
	}
}

// RequestedItem is one (product, quantity) pair from the caller.
type RequestedItem struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	CustomerID string
	Items      []RequestedItem
}

// validatedLine is a requested line item matched against its catalog record.
// available is the catalog quantity observed at validation time; the commit
// step reuses it for the decrement instead of re-reading the catalog.
type validatedLine struct {
	productID string
	price     int64
	requested int
	available int
}

func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	cust, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, domcustomer.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: resolve customer: %w", ErrCollaborator, err)
	}

	validated, err := s.checkAvailability(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, cust, validated)
}

// checkAvailability fetches catalog records for the requested ids in one
// batch and verifies every matched request fits the available quantity.
// Read-only; it never mutates the catalog.
func (s *Service) checkAvailability(ctx context.Context, requested []RequestedItem) ([]validatedLine, error) {
	ids := make([]string, 0, len(requested))
	byID := make(map[string]RequestedItem, len(requested))
	for _, r := range requested {
		ids = append(ids, r.ProductID)
		byID[r.ProductID] = r
	}

	found, err := s.catalog.FindAllByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog lookup: %w", ErrCollaborator, err)
	}
	if len(found) == 0 {
		return nil, domproduct.ErrNoneFound
	}

	validated := make([]validatedLine, 0, len(found))
	for _, p := range found {
		// A fetched record without a matching request validates at
		// quantity zero rather than failing.
		want := byID[p.ID].Quantity
		if !p.HasStock(want) {
			return nil, fmt.Errorf("%w for product: %s", domproduct.ErrInsufficientStock, p.Name)
		}
		validated = append(validated, validatedLine{
			productID: p.ID,
			price:     p.Price,
			requested: want,
			available: p.Quantity,
		})
	}

	if dropped := len(byID) - len(found); dropped > 0 {
		// Requested ids the catalog did not resolve are dropped silently
		// as long as at least one resolved; surface the count for operators.
		logctx.FromOr(ctx, s.log).Warn("requested_products_unresolved",
			observability.F("dropped", dropped),
			observability.F("requested", len(byID)),
		)
	}

	return validated, nil
}

// commit writes the new stock levels in one batch, then persists the order.
// The quantity update is submitted first; if order creation fails afterwards
// the stock stays decremented with no order. Atomicity across both writes
// belongs to the collaborators, not to this workflow.
func (s *Service) commit(ctx context.Context, cust *domcustomer.Customer, lines []validatedLine) (*domain.Order, error) {
	updates := make([]domproduct.QuantityUpdate, 0, len(lines))
	items := make([]domain.LineItem, 0, len(lines))
	for _, l := range lines {
		updates = append(updates, domproduct.QuantityUpdate{
			ProductID: l.productID,
			Quantity:  l.available - l.requested,
		})
		items = append(items, domain.LineItem{
			ProductID: l.productID,
			Price:     l.price,
			Quantity:  l.requested,
		})
	}

	if err := s.catalog.UpdateQuantities(ctx, updates); err != nil {
		return nil, fmt.Errorf("%w: update quantities: %w", ErrCollaborator, err)
	}

	created, err := s.orders.Create(ctx, cust.ID, items)
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %w", ErrCollaborator, err)
	}
	return created, nil
}
