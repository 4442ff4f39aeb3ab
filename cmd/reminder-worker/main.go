package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/metrics"
	"github.com/prohmpiriya/event-scheduler/internal/repository"
	"github.com/prohmpiriya/event-scheduler/internal/service"
	"github.com/prohmpiriya/event-scheduler/internal/worker"
	"github.com/prohmpiriya/event-scheduler/pkg/config"
	"github.com/prohmpiriya/event-scheduler/pkg/logger"
	"github.com/prohmpiriya/event-scheduler/pkg/mongodb"
	pkgredis "github.com/prohmpiriya/event-scheduler/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "reminder-worker",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Reminder Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize MongoDB connection
	mongoCfg := &mongodb.Config{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		ConnectTimeout: cfg.MongoDB.ConnectTimeout,
		MaxPoolSize:    10,
		MinPoolSize:    2,
		MaxRetries:     3,
		RetryInterval:  2 * time.Second,
	}
	mongo, err := mongodb.New(ctx, mongoCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
	}
	defer mongo.Close(context.Background())
	appLog.Info("MongoDB connected")

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      20,
		MinIdleConns:  5,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	redis, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	defer redis.Close()
	appLog.Info("Redis connected")

	// Initialize repositories and the reminder service. The worker reports
	// delivery failures back through the service's failure channel.
	jobRepo := repository.NewMongoReminderJobRepository(mongo.Database())
	taskQueue := repository.NewRedisTaskQueue(redis.Client())
	reminderService := service.NewReminderService(jobRepo, taskQueue, cfg.Reminder.Offset, appLog)

	go reminderService.ConsumeFailures(ctx)

	// Create worker
	reminderWorker := worker.NewReminderWorker(
		taskQueue,
		nil, // default delivery logs the fired reminder
		reminderService.FailureSink(),
		&worker.ReminderWorkerConfig{
			ScanInterval:          cfg.Reminder.ScanInterval,
			BatchSize:             cfg.Reminder.BatchSize,
			DeliveryRetries:       cfg.Reminder.DeliveryRetries,
			DeliveryRetryInterval: cfg.Reminder.DeliveryRetryInterval,
		},
	)

	// Start worker
	if err := reminderWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start worker: %v", err))
	}

	appLog.Info("Reminder Worker started successfully")

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down worker...")
	reminderWorker.Stop()
	cancel()

	stats := reminderWorker.GetStats()
	appLog.Info(fmt.Sprintf("Worker exited gracefully (fired: %d, failed: %d)", stats.TotalFired, stats.TotalFailed))
}
