package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rental-engine-backend/internal/config"
	"rental-engine-backend/internal/jobs"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/messaging"
	"rental-engine-backend/internal/messaging/kafka"
	"rental-engine-backend/internal/repository/postgres"
	"rental-engine-backend/internal/scheduler"
	"rental-engine-backend/internal/service"
	"rental-engine-backend/internal/utils"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'lifecycle-sweep')")
	date := flag.String("date", "", "Calendar day (yyyy-mm-dd) to replay with -run-once lifecycle-sweep")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Engine Cronjob Runner...", "log_level", cfg.Log.Level)

	if cfg.Database.Driver == config.DriverMemory {
		log.Fatalf("The cronjob runner needs a shared database; driver %q keeps state in the server process", cfg.Database.Driver)
	}

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.InitDB(cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	emailService := service.WithRetry(service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName), 2)
	var publisher messaging.Publisher = messaging.NewNoopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		kp := kafka.NewPublisher(cfg.Kafka.Brokers)
		defer kp.Close()
		publisher = kp
	}
	notifier := service.NewNotifier(store.Repos(), emailService, publisher, cfg.Kafka.Topic)
	lifecycleService := service.NewLifecycleService(store, notifier)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(lifecycleService, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := runJobOnce(jobRunner, *runOnce, *date); err != nil {
			logger.Error("Job failed", "job", *runOnce, "error", err)
			fmt.Println(err)
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "next_run", cronScheduler.NextRun())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName, date string) error {
	switch jobName {
	case "lifecycle-sweep":
		if date == "" {
			jobRunner.RunLifecycleSweep()
			return nil
		}
		day, err := utils.ParseDate(date)
		if err != nil {
			return err
		}
		jobRunner.RunLifecycleSweepAt(day)
		return nil
	default:
		return fmt.Errorf("unknown job %q, available jobs:\n  - lifecycle-sweep", jobName)
	}
}
