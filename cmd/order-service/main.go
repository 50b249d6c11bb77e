package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanamura/ec-order-service/internal/app/background"
	"github.com/hanamura/ec-order-service/internal/config"
	"github.com/hanamura/ec-order-service/internal/delivery/http/handlers"
	publisher "github.com/hanamura/ec-order-service/internal/infrastructure/kafka"
	"github.com/hanamura/ec-order-service/internal/infrastructure/metrics"
	"github.com/hanamura/ec-order-service/internal/infrastructure/migrate"
	"github.com/hanamura/ec-order-service/internal/infrastructure/postgres"
	"github.com/hanamura/ec-order-service/internal/infrastructure/postgres/repository"
	usecase "github.com/hanamura/ec-order-service/internal/usecase/order"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if cfg.OrderDB.MigrationPath != "" {
		if err := migrate.RunMigrations(db, cfg.OrderDB.MigrationPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewKafkaPublisher(brokers, cfg.KafkaService.OrderEventsTopic, cfg.KafkaService.PaymentEventsTopic)

	// Init order repo
	orderRepo := repository.NewDefaultOrderRepository(db)

	// Init storage handler
	httpStorageHandler, err := handlers.NewHTTPStorageHandler(fmt.Sprintf("http://%s:%s", cfg.StorageService.Host, cfg.StorageService.Port))
	if err != nil {
		log.Fatalf("failed to init storage handler: %v", err)
	}
	// Init payment handler
	httpPaymentHandler, err := handlers.NewHTTPPaymentHandler(fmt.Sprintf("http://%s:%s", cfg.PaymentService.Host, cfg.PaymentService.Port))
	if err != nil {
		log.Fatalf("failed to init payment handler: %v", err)
	}

	paymentMetrics := metrics.NewPaymentMetrics()

	// Init order usecase
	uc := usecase.NewDefaultOrderUsecase(
		orderRepo,
		httpStorageHandler,
		httpPaymentHandler,
		pub,
		paymentMetrics,
		usecase.PaymentTimings{
			WaitTimeout:           cfg.Payment.WaitTimeout,
			TokenRefreshThreshold: cfg.Payment.TokenRefreshThreshold,
			PollBatchSize:         cfg.Payment.PollBatchSize,
		},
	)

	mux := http.NewServeMux()
	handlers.NewOrderHandler(uc).RegisterRoutes(mux)
	handlers.NewWebhookHandler(uc, pub).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background workers
	tasks := background.NewBackgroundTasks(uc, cfg.Payment.PollInterval, cfg.Payment.TimeoutInterval)
	tasks.StartAll(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler: mux,
	}

	go func() {
		slog.Info("order service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err.Error())
	}
}
