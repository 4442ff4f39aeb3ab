package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-scheduler/internal/di"
	"github.com/prohmpiriya/event-scheduler/internal/metrics"
	"github.com/prohmpiriya/event-scheduler/pkg/config"
	"github.com/prohmpiriya/event-scheduler/pkg/logger"
	"github.com/prohmpiriya/event-scheduler/pkg/mongodb"
	pkgredis "github.com/prohmpiriya/event-scheduler/pkg/redis"
	"github.com/prohmpiriya/event-scheduler/pkg/telemetry"
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
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Event Scheduler...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, continuing without tracing: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize MongoDB connection
	mongoCfg := &mongodb.Config{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		ConnectTimeout: cfg.MongoDB.ConnectTimeout,
		MaxPoolSize:    cfg.MongoDB.MaxPoolSize,
		MinPoolSize:    cfg.MongoDB.MinPoolSize,
		MaxRetries:     3,
		RetryInterval:  time.Second,
	}
	mongo, err := mongodb.New(ctx, mongoCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("MongoDB connection failed: %v", err))
	}
	defer mongo.Close(context.Background())
	appLog.Info(fmt.Sprintf("MongoDB connected (database: %s)", cfg.MongoDB.Database))

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info(fmt.Sprintf("Redis connected (%s)", redisCfg.Addr()))

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		Config: cfg,
		Mongo:  mongo,
		Redis:  redisClient,
		Logger: appLog,
	})

	// Start the reminder dispatch worker and the failure consumer
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	go container.ReminderService.ConsumeFailures(workerCtx)
	if err := container.ReminderWorker.Start(workerCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start reminder worker: %v", err))
	}
	defer container.ReminderWorker.Stop()

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordRequestDuration(c.Request.Context(), c.FullPath(), time.Since(start).Seconds())
	})

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	events := router.Group("/events")
	{
		events.POST("", container.EventHandler.ScheduleEvent)
		events.GET("", container.EventHandler.GetEvents)
		events.GET("/:id", container.EventHandler.GetEvent)
		events.PUT("/:id", container.EventHandler.UpdateEvent)
		events.DELETE("/:id", container.EventHandler.DeleteEvent)
		events.DELETE("", container.EventHandler.DeleteAllEvents)
		events.POST("/batch", container.EventHandler.BatchOperations)
	}

	jobs := router.Group("/jobs")
	{
		jobs.GET("", container.JobHandler.GetJobs)
		jobs.GET("/lookup", container.JobHandler.GetJob)
		jobs.DELETE("/:jobId", container.JobHandler.DeleteJob)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Event Scheduler listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	container.ReminderWorker.Stop()
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
