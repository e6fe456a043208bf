package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appOrder "github.com/minicart/orderflow/internal/application/order"
	appStock "github.com/minicart/orderflow/internal/application/stock"
	"github.com/minicart/orderflow/internal/config"
	domcustomer "github.com/minicart/orderflow/internal/domain/customer"
	domproduct "github.com/minicart/orderflow/internal/domain/product"
	"github.com/minicart/orderflow/internal/infrastructure/id"
	"github.com/minicart/orderflow/internal/infrastructure/memory"
	infraobs "github.com/minicart/orderflow/internal/infrastructure/observability"
	"github.com/minicart/orderflow/internal/infrastructure/observability/oteltrace"
	"github.com/minicart/orderflow/internal/infrastructure/observability/prometrics"
	"github.com/minicart/orderflow/internal/infrastructure/observability/zaplogger"
	"github.com/minicart/orderflow/internal/infrastructure/outbox"
	"github.com/minicart/orderflow/internal/observability"
	"github.com/minicart/orderflow/internal/pkg/logging"
	httppresentation "github.com/minicart/orderflow/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env, cfg.LogFile)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	appLogger := zaplogger.Wrap(baseLogger)
	registry := prometrics.New("", "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MExternalRequests: registry.Counter(
			string(observability.MExternalRequests),
			"Total number of calls to external peers.",
			"peer", "endpoint", "outcome",
		),
		observability.MHTTPRequests: registry.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
		observability.MLowStock: registry.Counter(
			string(observability.MLowStock),
			"Count of low-stock observations per product.",
			"product_id",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			prometheus.DefBuckets,
			"use_case",
		),
		observability.MExternalRequestDuration: registry.Histogram(
			string(observability.MExternalRequestDuration),
			"Duration of calls to external peers in seconds.",
			prometheus.DefBuckets,
			"peer", "endpoint",
		),
		observability.MHTTPRequestDuration: registry.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.",
			prometheus.DefBuckets,
			"method", "route", "status",
		),
	}
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), appLogger, counters, histograms)

	customerRepo := memory.NewCustomerRepository()
	productRepo := memory.NewProductRepository()
	orderRepo := memory.NewOrderRepository(id.NewUUIDGenerator())
	seedDemoData(customerRepo, productRepo)

	bus := outbox.NewBus(appLogger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	workflow := appOrder.NewService(customerRepo, productRepo, orderRepo, appLogger)
	createOrder := appOrder.NewCreateOrderUseCase(workflow, bus, tel)

	watcher := appStock.NewWatcher(productRepo, cfg.LowStockThreshold, tel)
	watcher.Start(bus)

	handler := httppresentation.NewHandler(createOrder, appLogger, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
}

// seedDemoData loads a small catalog so the service answers requests out of
// the box. Real deployments replace the memory repositories with adapters to
// the owning systems.
func seedDemoData(customers *memory.CustomerRepository, products *memory.ProductRepository) {
	customers.Seed(
		&domcustomer.Customer{ID: "c-1001", Name: "Ada Lovelace", Email: "ada@example.com"},
		&domcustomer.Customer{ID: "c-1002", Name: "Alan Turing", Email: "alan@example.com"},
	)
	products.Seed(
		&domproduct.Product{ID: "p-2001", Name: "Mechanical Keyboard", Price: 12900, Quantity: 25, UpdatedAt: time.Now().UTC()},
		&domproduct.Product{ID: "p-2002", Name: "USB-C Dock", Price: 8400, Quantity: 10, UpdatedAt: time.Now().UTC()},
		&domproduct.Product{ID: "p-2003", Name: "Laptop Stand", Price: 3900, Quantity: 4, UpdatedAt: time.Now().UTC()},
	)
}
