package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/lib/pq"

	"rentaldesk-backend/internal/config"
	"rentaldesk-backend/internal/jobs"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/metrics"
	"rentaldesk-backend/internal/notify"
	"rentaldesk-backend/internal/repository/postgres"
	"rentaldesk-backend/internal/scheduler"
	"rentaldesk-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'late-order-reminders')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentalDesk cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := postgres.NewStore(db)
	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = store.Ping(pingCtx)
	cancel()
	if err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	m := metrics.New(prometheus.NewRegistry(), cfg.Metrics.Namespace)
	notifier, err := buildNotifier(context.Background(), cfg.Notifications, m)
	if err != nil {
		log.Fatalf("Failed to initialize notifications: %v", err)
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobs.Deps{
		Orders:   store.OrderRepository,
		Branches: store.BranchRepository,
		Notifier: notifier,
		Recorder: m,
		Clock:    service.ClockIn(cfg.Location()),
	})

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.Run(context.Background(), *runOnce); err != nil {
			fmt.Fprintf(os.Stderr, "Job %s failed: %v\n", *runOnce, err)
			fmt.Fprintf(os.Stderr, "Available jobs:\n  - %s\n", jobs.JobLateOrderReminders)
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner, cfg.Scheduler, cfg.Location())
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Minute)
	defer stopCancel()
	cronScheduler.Stop(stopCtx)
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// buildNotifier wires every configured channel. Without any, digests are logged.
func buildNotifier(ctx context.Context, cfg config.NotificationsConfig, m *metrics.Metrics) (notify.Notifier, error) {
	var channels []notify.Notifier
	if cfg.SendGridAPIKey != "" {
		channels = append(channels, notify.NewEmailNotifier(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName))
		logger.Info("Email notifications enabled", "from", cfg.FromEmail)
	}
	if cfg.FirebaseEnabled {
		push, err := notify.NewPushNotifier(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		channels = append(channels, push)
		logger.Info("Push notifications enabled")
	}
	if len(channels) == 0 {
		logger.Warn("No notification channel configured, late orders will only be logged")
		channels = append(channels, notify.LogNotifier{})
	}
	return notify.NewFanout(m.NotificationSent, channels...), nil
}
