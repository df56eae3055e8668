package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	pb "rentaldesk-backend/api/gen/v1"
	api "rentaldesk-backend/internal/api/grpc"
	"rentaldesk-backend/internal/api/grpc/interceptor"
	httpapi "rentaldesk-backend/internal/api/http"
	"rentaldesk-backend/internal/config"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/metrics"
	"rentaldesk-backend/internal/repository/postgres"
	"rentaldesk-backend/internal/security"
	"rentaldesk-backend/internal/service"
	"rentaldesk-backend/internal/session"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Create missing tables before serving")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentalDesk backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store := postgres.NewStore(db)
	if err := store.Ping(ctx); err != nil {
		cancel()
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	if *migrate {
		if err := store.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema ensured")
	}
	cancel()
	logger.Info("Database connection established")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry, cfg.Metrics.Namespace)

	// Initialize Services
	clock := service.ClockIn(cfg.Location())
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	sessionSvc := service.NewSessionService(store.StaffRepository, store.BranchRepository)
	authSvc := service.NewAuthService(store.StaffRepository, sessionSvc, tokenManager)
	customerSvc := service.NewCustomerService(store.CustomerRepository)
	orderSvc := service.NewOrderService(
		store.OrderRepository,
		store.CustomerRepository,
		store.BranchRepository,
		m,
		clock,
		service.OrderOptions{
			DefaultPageSize: cfg.Orders.DefaultPageSize,
			MaxPageSize:     cfg.Orders.MaxPageSize,
		},
	)
	drafts := session.NewStore(orderSvc, clock)

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(m.UnaryServerInterceptor(), authInterceptor.Unary()),
		grpc.ChainStreamInterceptor(authInterceptor.Stream()),
	)

	// Register services
	pb.RegisterAuthServiceServer(s, api.NewAuthHandler(authSvc))
	pb.RegisterOrderServiceServer(s, api.NewOrderHandler(orderSvc, sessionSvc, cfg.Location()))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(s, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Register reflection service for grpcurl
	reflection.Register(s)

	// Set up HTTP server for drafts, health and metrics
	routerCfg := httpapi.RouterConfig{
		Drafts:    drafts,
		Customers: customerSvc,
		Sessions:  sessionSvc,
		Tokens:    tokenManager,
		Health:    store,
		Location:  cfg.Location(),
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}
	httpSrv := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := s.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down...")
	healthSrv.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	s.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}
