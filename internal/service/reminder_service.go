package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/internal/metrics"
	"github.com/prohmpiriya/event-scheduler/internal/repository"
	"github.com/prohmpiriya/event-scheduler/pkg/logger"
	"github.com/prohmpiriya/event-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Lookup keys accepted by GetReminderJob
const (
	LookupKeyEventID = "eventId"
	LookupKeyJobID   = "jobId"
)

// ReminderService defines the interface for reminder lifecycle logic
type ReminderService interface {
	// ScheduleReminder enqueues a delayed reminder task for the event and
	// persists its durable job record
	ScheduleReminder(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error)

	// CancelReminder removes the reminder task and its record. Cancelling a
	// reminder whose queued task no longer exists fails with
	// ErrReminderNotFound.
	CancelReminder(ctx context.Context, jobID string) error

	// GetReminderJob looks up a job record by eventId or jobId
	GetReminderJob(ctx context.Context, key, value string) (*domain.ReminderJob, error)

	// GetAllJobs enumerates queued tasks grouped by state
	GetAllJobs(ctx context.Context) ([]*domain.ReminderTask, error)

	// RemoveJob deletes a task from the queue by its job id. Unlike
	// CancelReminder, removing an unknown job id is an error.
	RemoveJob(ctx context.Context, jobID string) error

	// FailureSink returns the channel the dispatcher reports failed
	// deliveries on
	FailureSink() chan<- domain.TaskFailure

	// ConsumeFailures drains the failure channel until ctx is cancelled
	ConsumeFailures(ctx context.Context)
}

// reminderService implements ReminderService
type reminderService struct {
	jobRepo  repository.ReminderJobRepository
	queue    repository.TaskQueue
	offset   time.Duration
	failures chan domain.TaskFailure
	log      *logger.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(
	jobRepo repository.ReminderJobRepository,
	queue repository.TaskQueue,
	offset time.Duration,
	log *logger.Logger,
) ReminderService {
	if offset <= 0 {
		offset = domain.ReminderOffset
	}
	if log == nil {
		log = logger.Get()
	}
	return &reminderService{
		jobRepo:  jobRepo,
		queue:    queue,
		offset:   offset,
		failures: make(chan domain.TaskFailure, 64),
		log:      log,
	}
}

// ScheduleReminder enqueues a delayed reminder task and persists its record
func (s *reminderService) ScheduleReminder(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reminder.schedule")
	defer span.End()

	if event == nil || event.ID == "" {
		span.SetStatus(codes.Error, "invalid event")
		return nil, domain.ErrInvalidEventID
	}

	job := domain.NewReminderJob(event, s.offset)
	job.JobID = uuid.New().String()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("job_id", job.JobID),
	)

	task := &domain.ReminderTask{
		JobID:   job.JobID,
		EventID: event.ID,
		Title:   event.Title,
		FireAt:  job.ReminderTime,
		State:   domain.TaskStateDelayed,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	created, err := s.jobRepo.Create(ctx, job)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// Keep queue and store consistent: drop the task we just enqueued
		if rmErr := s.queue.Remove(ctx, job.JobID); rmErr != nil && !errors.Is(rmErr, domain.ErrJobNotFound) {
			s.log.Error("failed to roll back enqueued task",
				zap.String("job_id", job.JobID),
				zap.Error(rmErr),
			)
		}
		return nil, err
	}

	metrics.RecordReminderScheduled(ctx)
	s.log.Info("reminder scheduled",
		zap.String("event_id", event.ID),
		zap.String("job_id", job.JobID),
		zap.Time("fire_at", job.ReminderTime),
	)
	return created, nil
}

// CancelReminder removes the task and record for a job id
func (s *reminderService) CancelReminder(ctx context.Context, jobID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.reminder.cancel")
	defer span.End()

	if jobID == "" {
		span.SetStatus(codes.Error, "empty job id")
		return domain.ErrEmptyJobID
	}

	span.SetAttributes(attribute.String("job_id", jobID))

	if err := s.queue.Remove(ctx, jobID); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			span.SetStatus(codes.Error, "reminder task absent")
			return domain.ErrReminderNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.jobRepo.DeleteByJobID(ctx, jobID); err != nil && !errors.Is(err, domain.ErrReminderNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	metrics.RecordReminderCancelled(ctx)
	s.log.Info("reminder cancelled", zap.String("job_id", jobID))
	return nil
}

// GetReminderJob looks up a job record by eventId or jobId
func (s *reminderService) GetReminderJob(ctx context.Context, key, value string) (*domain.ReminderJob, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reminder.get_job")
	defer span.End()

	span.SetAttributes(
		attribute.String("key", key),
		attribute.String("value", value),
	)

	if key != LookupKeyEventID && key != LookupKeyJobID {
		span.SetStatus(codes.Error, "invalid lookup key")
		return nil, domain.ErrInvalidLookupKey
	}
	if value == "" {
		span.SetStatus(codes.Error, "empty lookup value")
		return nil, domain.ErrEmptyLookupValue
	}

	if key == LookupKeyEventID {
		return s.jobRepo.FindByEventID(ctx, value)
	}
	return s.jobRepo.FindByJobID(ctx, value)
}

// GetAllJobs lists queued tasks state by state, each state in insertion order
func (s *reminderService) GetAllJobs(ctx context.Context) ([]*domain.ReminderTask, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reminder.get_all_jobs")
	defer span.End()

	var all []*domain.ReminderTask
	for _, state := range domain.TaskStates() {
		tasks, err := s.queue.TasksByState(ctx, state)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		all = append(all, tasks...)
	}

	span.SetAttributes(attribute.Int("count", len(all)))
	return all, nil
}

// RemoveJob deletes a queued task by job id
func (s *reminderService) RemoveJob(ctx context.Context, jobID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.reminder.remove_job")
	defer span.End()

	if jobID == "" {
		span.SetStatus(codes.Error, "empty job id")
		return domain.ErrEmptyJobID
	}

	span.SetAttributes(attribute.String("job_id", jobID))

	if err := s.queue.Remove(ctx, jobID); err != nil {
		if !errors.Is(err, domain.ErrJobNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}

	if err := s.jobRepo.DeleteByJobID(ctx, jobID); err != nil && !errors.Is(err, domain.ErrReminderNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	metrics.RecordReminderCancelled(ctx)
	return nil
}

// FailureSink returns the channel failed deliveries are reported on
func (s *reminderService) FailureSink() chan<- domain.TaskFailure {
	return s.failures
}

// ConsumeFailures logs and counts failed deliveries until ctx is cancelled
func (s *reminderService) ConsumeFailures(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case failure := <-s.failures:
			metrics.RecordReminderFailed(ctx, "dispatch")
			s.log.Error("reminder delivery failed",
				zap.String("job_id", failure.JobID),
				zap.String("event_id", failure.EventID),
				zap.Time("failed_at", failure.FailedAt),
				zap.Error(failure.Err),
			)
		}
	}
}
