package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "rental-engine-backend/internal/api/grpc"
	httpapi "rental-engine-backend/internal/api/http"
	"rental-engine-backend/internal/config"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/messaging"
	"rental-engine-backend/internal/messaging/kafka"
	"rental-engine-backend/internal/repository"
	"rental-engine-backend/internal/repository/memory"
	"rental-engine-backend/internal/repository/postgres"
	"rental-engine-backend/internal/security"
	"rental-engine-backend/internal/service"
)

// backingStore is what main needs from either store implementation.
type backingStore interface {
	repository.Store
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Engine...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetHTTPAddress(), "grpc", cfg.GetGRPCAddress())

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Initialize Email Service
	emailSvc := service.WithRetry(service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName), 1)

	// Initialize event publisher
	var publisher messaging.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := kafka.NewPublisher(cfg.Kafka.Brokers)
		defer kp.Close()
		publisher = kp
		logger.Info("Publishing order events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		publisher = messaging.NewNoopPublisher()
		logger.Info("No Kafka brokers configured, order events are dropped")
	}

	// Initialize Services
	notifier := service.NewNotifier(store.Repos(), emailSvc, publisher, cfg.Kafka.Topic)
	repos := store.Repos()
	handler := httpapi.NewHandler(&httpapi.Services{
		Orders:        service.NewOrderService(store, notifier),
		Pickups:       service.NewPickupService(store),
		Returns:       service.NewReturnService(store, notifier),
		Invoices:      service.NewInvoiceService(store),
		Lifecycle:     service.NewLifecycleService(store, notifier),
		Notifications: service.NewNotificationService(repos.Notifications),
		Ledger:        service.NewInventoryLedger(repos.Products, repos.Reservations),
	})

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up gRPC server
	grpcServer := grpcapi.NewServer(tokenManager, store.Ping, cfg.Server.GRPCReflection)
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	go grpcServer.WatchStore(ctx, 15*time.Second)
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	// Set up HTTP server
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(handler, tokenManager),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.Shutdown()
	logger.Info("Server stopped. Goodbye!")
}

func openStore(cfg *config.Config) (backingStore, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := postgres.InitDB(cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection established")
	return postgres.NewStore(db), nil
}
