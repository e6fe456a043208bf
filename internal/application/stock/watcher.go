package stock

import (
	"context"
	"fmt"
	"time"

	domain "github.com/minicart/orderflow/internal/domain/order"
	domoutbox "github.com/minicart/orderflow/internal/domain/outbox"
	domproduct "github.com/minicart/orderflow/internal/domain/product"
	"github.com/minicart/orderflow/internal/observability"
	"github.com/minicart/orderflow/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	watcherService   = "stock-watcher"
	useCaseLowStock  = "stock.watch"
	watcherSpanName  = "UC.OnOrderCreated"
	DefaultThreshold = 5
)

// Watcher listens for created orders and flags products whose remaining
// stock has dropped to the configured threshold or below. It only reads the
// catalog; replenishment is somebody else's job.
type Watcher struct {
	catalog    domproduct.Repository
	threshold  int
	log        observability.Logger
	tracer     observability.Tracer
	reqCounter observability.Counter
	lowCounter observability.Counter
	durHist    observability.Histogram
}

func NewWatcher(catalog domproduct.Repository, threshold int, tel observability.Observability) *Watcher {
	if tel == nil {
		tel = observability.Nop()
	}
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Watcher{
		catalog:    catalog,
		threshold:  threshold,
		log:        tel.Logger().With(observability.F("service", watcherService)),
		tracer:     tel.Tracer(),
		reqCounter: tel.Metrics().Counter(observability.MUsecaseRequests),
		lowCounter: tel.Metrics().Counter(observability.MLowStock),
		durHist:    tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Start registers the watcher on the event bus.
func (w *Watcher) Start(subscriber domoutbox.Subscriber) {
	if subscriber == nil || w.catalog == nil {
		return
	}
	subscriber.Subscribe(domain.OrderCreatedEvent{}.EventName(), w.handleOrderCreated)
}

func (w *Watcher) handleOrderCreated(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domain.OrderCreatedEvent)
	if !ok {
		w.count("ignored")
		return nil
	}

	ctx, span := w.tracer.Start(ctx, watcherSpanName,
		attribute.String("use_case", useCaseLowStock),
		attribute.String("order.id", evt.OrderID),
	)
	start := time.Now()
	outcome, status := "success", "OK"

	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("use_case", useCaseLowStock),
		observability.F("order_id", evt.OrderID),
	)

	defer func() {
		w.count(outcome)
		if w.durHist != nil {
			w.durHist.Observe(time.Since(start).Seconds(),
				observability.L("use_case", useCaseLowStock),
			)
		}
		if span != nil {
			if outcome == "error" {
				span.SetStatus(codes.Error, status)
			} else {
				span.SetStatus(codes.Ok, status)
			}
			span.End()
		}
	}()

	ids := make([]string, 0, len(evt.LineItems))
	for _, li := range evt.LineItems {
		ids = append(ids, li.ProductID)
	}

	products, err := w.catalog.FindAllByID(ctx, ids)
	if err != nil {
		outcome, status = "error", "CATALOG_LOOKUP_FAILED"
		return fmt.Errorf("stock watcher: catalog lookup: %w", err)
	}

	low := 0
	for _, p := range products {
		if p.Quantity > w.threshold {
			continue
		}
		low++
		if w.lowCounter != nil {
			w.lowCounter.Add(1, observability.L("product_id", p.ID))
		}
		logger.Warn("low_stock",
			observability.F("product_id", p.ID),
			observability.F("product_name", p.Name),
			observability.F("remaining", p.Quantity),
			observability.F("threshold", w.threshold),
		)
	}

	span.SetAttributes(attribute.Int("stock.low_products", low))
	return nil
}

func (w *Watcher) count(outcome string) {
	if w.reqCounter == nil {
		return
	}
	w.reqCounter.Add(1,
		observability.L("use_case", useCaseLowStock),
		observability.L("outcome", outcome),
	)
}
