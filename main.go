package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appCatalog "github.com/Zhima-Mochi/petstore-core/internal/application/catalog"
	appInventory "github.com/Zhima-Mochi/petstore-core/internal/application/inventory"
	appOrder "github.com/Zhima-Mochi/petstore-core/internal/application/order"
	appPayment "github.com/Zhima-Mochi/petstore-core/internal/application/payment"
	"github.com/Zhima-Mochi/petstore-core/internal/config"
	dompay "github.com/Zhima-Mochi/petstore-core/internal/domain/payment"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/id"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/idempotency"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/kafka"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/petstore-core/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/Zhima-Mochi/petstore-core/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/petstore-core/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/petstore-core/internal/presentation/worker"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)
	if err != nil {
		panic(err)
	}
	systemLogger := logger.With(
		observability.F("trace_id", logging.SystemTraceID),
		observability.F("span_id", logging.SystemSpanID),
	)

	counters, histograms := prometrics.RegisterDefaults(prometrics.New(nil, "", ""))
	tel := infraobs.New(infraobs.Options{
		Tracer:     oteltrace.New(cfg.ServiceName),
		Logger:     logger,
		Counters:   counters,
		Histograms: histograms,
	})
	defer func() { _ = tel.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// In-process outbox; the event log and the optional Kafka relay consume it.
	bus := outbox.NewBus(systemLogger, tel)
	workerpresentation.NewEventLog(logger, tel, cfg.LowStockLevel).Register(bus)

	var relay *kafka.Relay
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		relay = kafka.NewRelay(brokers, cfg.KafkaTopic, systemLogger, tel)
		relay.Register(bus)
		systemLogger.Info("kafka_relay_enabled",
			observability.F("brokers", brokers),
			observability.F("topic", cfg.KafkaTopic),
		)
	}
	bus.Start(ctx)

	var store idempotency.Store = idempotency.NewMemoryStore(nil)
	if cfg.RedisAddr != "" {
		redisStore := idempotency.NewRedisStore(idempotency.NewRedisClient(cfg.RedisAddr))
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			systemLogger.Warn("redis_unavailable_using_memory_idempotency",
				observability.F("addr", cfg.RedisAddr),
				observability.F("error", err),
			)
		} else {
			store = redisStore
		}
		cancel()
	}

	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository()
	payments := memory.NewPaymentRepository()

	if cfg.SeedCatalog {
		n, err := memory.SeedCatalog(ctx, products)
		if err != nil {
			systemLogger.Error("catalog_seed_failed", observability.F("error", err))
		} else {
			systemLogger.Info("catalog_seeded", observability.F("products", n))
		}
	}

	var gateway dompay.Gateway = appPayment.InstantGateway{}
	if cfg.PaymentGateway == "simulated" {
		gateway = appPayment.NewSimulatedGateway(cfg.PaymentSuccess, time.Now().UnixNano())
	}

	ledger := appInventory.NewLedger(products, bus, tel)
	handler := httppresentation.NewHandler(httppresentation.Deps{
		Catalog: appCatalog.NewService(products, tel),
		Orders: appOrder.NewLifecycle(appOrder.Deps{
			Repo:      orders,
			Products:  products,
			Ledger:    ledger,
			OrderIDs:  id.NewSequence(id.OrderOffset),
			ItemIDs:   id.NewSequence(id.LineItemOffset),
			Numbers:   id.NewOrderNumbers(nil),
			Publisher: bus,
		}, tel),
		Payments: appPayment.NewReconciler(appPayment.Deps{
			Orders:         orders,
			Repo:           payments,
			Gateway:        gateway,
			IDs:            id.NewSequence(id.PaymentOffset),
			TransactionIDs: id.NewTransactionID,
			Publisher:      bus,
		}, tel),
		Idempotency:    store,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}, logger, tel)

	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Mount("/", handler.Router())

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		systemLogger.Info("http_server_start", observability.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error", observability.F("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", observability.F("error", err))
	} else {
		systemLogger.Info("http_server_stopped")
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		systemLogger.Warn("outbox_stop_error", observability.F("error", err))
	}
	if relay != nil {
		if err := relay.Close(); err != nil {
			systemLogger.Warn("kafka_relay_close_error", observability.F("error", err))
		}
	}
}
