package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/minicart/orderflow/internal/domain/order"
	domoutbox "github.com/minicart/orderflow/internal/domain/outbox"
	domproduct "github.com/minicart/orderflow/internal/domain/product"
	"github.com/minicart/orderflow/internal/observability"
	"github.com/minicart/orderflow/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService       = "order-service"
	useCaseOrderCreate = "order.create"
	spanPrefix         = "UC."
	publishPeer        = "outbox"
	publishEndpoint    = "order.created"
	publishTimeout     = 300 * time.Millisecond
)

// CreateOrderUseCase wraps the workflow with validation at the entry surface
// and observability hooks. The inner Service carries the consistency rules;
// this layer never changes their semantics.
type CreateOrderUseCase struct {
	workflow  *Service
	publisher domoutbox.Publisher

	// Base logger with fixed fields prebound (vendor must remain hidden).
	log    observability.Logger
	tracer observability.Tracer
	// RED metrics (supplied via DI; do not instantiate inside methods).
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewCreateOrderUseCase wires the dependencies required to execute the use case.
func NewCreateOrderUseCase(
	workflow *Service,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *CreateOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	baseLog := tel.Logger().With(
		observability.F("service", orderService),
	)
	metricsProvider := tel.Metrics()

	return &CreateOrderUseCase{
		workflow:     workflow,
		publisher:    publisher,
		log:          baseLog,
		tracer:       tel.Tracer(),
		reqCounter:   metricsProvider.Counter(observability.MUsecaseRequests),
		durHistogram: metricsProvider.Histogram(observability.MUsecaseDuration),
		extCounter:   metricsProvider.Counter(observability.MExternalRequests),
		extHistogram: metricsProvider.Histogram(observability.MExternalRequestDuration),
	}
}

type CreateOrderResult struct {
	OrderID   string
	Total     int64
	CreatedAt time.Time
}

// Execute performs the order creation flow.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseOrderCreate))

	var orderID string
	var publishErr error

	ctx, span := uc.tracer.Start(ctx, spanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.customer_id", cmd.CustomerID),
		attribute.Int("order.requested_items", len(cmd.Items)),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		if uc.reqCounter != nil {
			uc.reqCounter.Add(1,
				observability.L("use_case", useCaseOrderCreate),
				observability.L("outcome", outcome),
			)
		}
		if uc.durHistogram != nil {
			uc.durHistogram.Observe(lat,
				observability.L("use_case", useCaseOrderCreate),
			)
		}

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if orderID != "" {
			fields = append(fields, observability.F("order_id", orderID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("use_case_done", fields...)
	}()

	if cmd.CustomerID == "" {
		outcome, statusText = "error", "CUSTOMER_ID_REQUIRED"
		return nil, newValidation("customer id is required")
	}
	if len(cmd.Items) == 0 {
		outcome, statusText = "error", "ITEMS_REQUIRED"
		return nil, newValidation("at least one line item is required")
	}
	for _, item := range cmd.Items {
		if item.ProductID == "" {
			outcome, statusText = "error", "PRODUCT_ID_REQUIRED"
			return nil, newValidation("product id is required")
		}
		if item.Quantity <= 0 {
			outcome, statusText = "error", "QUANTITY_INVALID"
			return nil, newValidation("quantity must be greater than zero")
		}
	}
	if err := ctx.Err(); err != nil {
		outcome, statusText = "error", "CONTEXT_CANCELED"
		return nil, err
	}

	entity, werr := uc.workflow.CreateOrder(ctx, cmd)
	if werr != nil {
		outcome, statusText = "error", statusFor(werr)
		return nil, werr
	}
	orderID = entity.ID

	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		pubStart := time.Now()
		pubOutcome := "success"

		publishErr = uc.publisher.Publish(pubCtx, domain.NewOrderCreatedEvent(entity))
		if publishErr != nil {
			pubOutcome = "error"
			statusText = "EVENT_PUBLISH_FAILED"
		} else if pubCtx.Err() != nil {
			pubOutcome = "canceled"
			publishErr = pubCtx.Err()
			statusText = "EVENT_PUBLISH_TIMEOUT"
		}
		cancel()

		if uc.extCounter != nil {
			uc.extCounter.Add(1,
				observability.L("peer", publishPeer),
				observability.L("endpoint", publishEndpoint),
				observability.L("outcome", pubOutcome),
			)
		}
		if uc.extHistogram != nil {
			uc.extHistogram.Observe(time.Since(pubStart).Seconds(),
				observability.L("peer", publishPeer),
				observability.L("endpoint", publishEndpoint),
			)
		}
	}

	span.SetAttributes(attribute.Int("order.line_items", len(entity.LineItems)))
	span.AddEvent("order.created",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
		),
	)

	return &CreateOrderResult{
		OrderID:   entity.ID,
		Total:     entity.Total(),
		CreatedAt: entity.CreatedAt,
	}, nil
}

// ErrValidation marks malformed input rejected before the workflow runs.
var ErrValidation = errors.New("validation")

func newValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func statusFor(err error) string {
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		return "CUSTOMER_NOT_FOUND"
	case errors.Is(err, domproduct.ErrNoneFound):
		return "PRODUCTS_NOT_FOUND"
	case errors.Is(err, domproduct.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	default:
		return "COLLABORATOR_FAILED"
	}
}
