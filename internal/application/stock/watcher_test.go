package stock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/minicart/orderflow/internal/domain/order"
	domproduct "github.com/minicart/orderflow/internal/domain/product"
	"github.com/minicart/orderflow/internal/observability"
)

func orderEvent(items ...domain.LineItem) domain.OrderCreatedEvent {
	return domain.OrderCreatedEvent{
		OrderID:    "o-1",
		CustomerID: "c1",
		LineItems:  items,
		OccurredAt: time.Now().UTC(),
	}
}

func TestWatcher_FlagsLowStock(t *testing.T) {
	catalog := &stubCatalog{products: map[string]*domproduct.Product{
		"p1": {ID: "p1", Name: "Keyboard", Quantity: 2},
		"p2": {ID: "p2", Name: "Dock", Quantity: 50},
	}}
	metrics := newRecordingMetrics()
	w := NewWatcher(catalog, 5, &recordingTel{metrics: metrics})

	err := w.handleOrderCreated(context.Background(), orderEvent(
		domain.LineItem{ProductID: "p1", Quantity: 1},
		domain.LineItem{ProductID: "p2", Quantity: 1},
	))

	require.NoError(t, err)
	assert.Equal(t, float64(1), metrics.counterValue(observability.MLowStock, "product_id", "p1"))
	assert.Zero(t, metrics.counterValue(observability.MLowStock, "product_id", "p2"))
}

func TestWatcher_ThresholdBoundary(t *testing.T) {
	catalog := &stubCatalog{products: map[string]*domproduct.Product{
		"p1": {ID: "p1", Name: "Keyboard", Quantity: 5},
	}}
	metrics := newRecordingMetrics()
	w := NewWatcher(catalog, 5, &recordingTel{metrics: metrics})

	err := w.handleOrderCreated(context.Background(), orderEvent(
		domain.LineItem{ProductID: "p1", Quantity: 1},
	))

	require.NoError(t, err)
	assert.Equal(t, float64(1), metrics.counterValue(observability.MLowStock, "product_id", "p1"),
		"quantity equal to the threshold counts as low")
}

func TestWatcher_CatalogFailure(t *testing.T) {
	catalog := &stubCatalog{findErr: errors.New("catalog down")}
	w := NewWatcher(catalog, 5, nil)

	err := w.handleOrderCreated(context.Background(), orderEvent(
		domain.LineItem{ProductID: "p1", Quantity: 1},
	))

	assert.Error(t, err)
}

func TestWatcher_IgnoresForeignEvents(t *testing.T) {
	w := NewWatcher(&stubCatalog{}, 5, nil)

	assert.NoError(t, w.handleOrderCreated(context.Background(), fakeEvent{}))
}

type fakeEvent struct{}

func (fakeEvent) EventName() string { return "something.else" }

var _ domproduct.Repository = &stubCatalog{}

type stubCatalog struct {
	products map[string]*domproduct.Product
	findErr  error
}

func (s *stubCatalog) FindAllByID(_ context.Context, ids []string) ([]*domproduct.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	found := make([]*domproduct.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found = append(found, p.Clone())
		}
	}
	return found, nil
}

func (s *stubCatalog) UpdateQuantities(context.Context, []domproduct.QuantityUpdate) error {
	return errors.New("watcher must not write to the catalog")
}

// recordingTel satisfies observability.Observability with recording counters.
type recordingTel struct {
	metrics *recordingMetrics
}

func (r *recordingTel) Tracer() observability.Tracer   { return observability.NopTracer() }
func (r *recordingTel) Logger() observability.Logger   { return observability.NopLogger() }
func (r *recordingTel) Metrics() observability.Metrics { return r.metrics }

type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]float64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: make(map[string]float64)}
}

func (m *recordingMetrics) Counter(name observability.MetricKey) observability.Counter {
	return &recordingCounter{metrics: m, name: name}
}

func (m *recordingMetrics) Histogram(observability.MetricKey) observability.Histogram {
	return observability.NopHistogram()
}

func (m *recordingMetrics) counterValue(name observability.MetricKey, labelKV ...string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[counterKey(name, labelKV...)]
}

type recordingCounter struct {
	metrics *recordingMetrics
	name    observability.MetricKey
}

func (c *recordingCounter) Add(delta float64, labels ...observability.Label) {
	kv := make([]string, 0, len(labels)*2)
	for _, l := range labels {
		kv = append(kv, l.Key, l.Value)
	}
	c.metrics.mu.Lock()
	defer c.metrics.mu.Unlock()
	c.metrics.counts[counterKey(c.name, kv...)] += delta
}

func counterKey(name observability.MetricKey, labelKV ...string) string {
	key := string(name)
	for _, part := range labelKV {
		key += "|" + part
	}
	return key
}
