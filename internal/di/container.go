package di

import (
	"github.com/prohmpiriya/event-scheduler/internal/handler"
	"github.com/prohmpiriya/event-scheduler/internal/repository"
	"github.com/prohmpiriya/event-scheduler/internal/saga"
	"github.com/prohmpiriya/event-scheduler/internal/service"
	"github.com/prohmpiriya/event-scheduler/internal/validator"
	"github.com/prohmpiriya/event-scheduler/internal/worker"
	"github.com/prohmpiriya/event-scheduler/pkg/config"
	"github.com/prohmpiriya/event-scheduler/pkg/logger"
	"github.com/prohmpiriya/event-scheduler/pkg/mongodb"
	"github.com/prohmpiriya/event-scheduler/pkg/redis"
)

// Container holds all dependencies for the scheduler service
type Container struct {
	// Infrastructure
	Mongo *mongodb.MongoDB
	Redis *redis.Client

	// Repositories
	EventRepo       repository.EventRepository
	ReminderJobRepo repository.ReminderJobRepository
	TaskQueue       repository.TaskQueue

	// Services
	ReminderService service.ReminderService
	EventService    service.EventService
	BatchService    service.BatchService

	// Workers
	ReminderWorker *worker.ReminderWorker

	// Handlers
	HealthHandler *handler.HealthHandler
	EventHandler  *handler.EventHandler
	JobHandler    *handler.JobHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	Mongo  *mongodb.MongoDB
	Redis  *redis.Client
	Logger *logger.Logger

	// Deliver overrides the default reminder delivery, mainly for tests
	Deliver worker.DeliverFunc
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	c := &Container{
		Mongo: cfg.Mongo,
		Redis: cfg.Redis,
	}

	// Initialize repositories
	db := cfg.Mongo.Database()
	c.EventRepo = repository.NewMongoEventRepository(db)
	c.ReminderJobRepo = repository.NewMongoReminderJobRepository(db)
	c.TaskQueue = repository.NewRedisTaskQueue(cfg.Redis.Client())

	// Initialize services
	c.ReminderService = service.NewReminderService(
		c.ReminderJobRepo,
		c.TaskQueue,
		cfg.Config.Reminder.Offset,
		log,
	)

	scheduleSaga := saga.NewScheduleEventSaga(c.EventRepo, c.ReminderService, log)

	c.EventService = service.NewEventService(
		c.EventRepo,
		c.ReminderService,
		scheduleSaga,
		validator.NewEventValidator(),
		log,
	)
	c.BatchService = service.NewBatchService(c.EventService, log)

	// Initialize workers
	c.ReminderWorker = worker.NewReminderWorker(
		c.TaskQueue,
		cfg.Deliver,
		c.ReminderService.FailureSink(),
		&worker.ReminderWorkerConfig{
			ScanInterval:          cfg.Config.Reminder.ScanInterval,
			BatchSize:             cfg.Config.Reminder.BatchSize,
			DeliveryRetries:       cfg.Config.Reminder.DeliveryRetries,
			DeliveryRetryInterval: cfg.Config.Reminder.DeliveryRetryInterval,
		},
	)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.Mongo, c.Redis)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.BatchService)
	c.JobHandler = handler.NewJobHandler(c.ReminderService)

	return c
}
