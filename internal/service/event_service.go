package service

import (
	"context"
	"errors"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/internal/dto"
	"github.com/prohmpiriya/event-scheduler/internal/metrics"
	"github.com/prohmpiriya/event-scheduler/internal/repository"
	"github.com/prohmpiriya/event-scheduler/internal/validator"
	"github.com/prohmpiriya/event-scheduler/pkg/logger"
	"github.com/prohmpiriya/event-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// EventScheduler runs the persist-and-remind transaction for a new event
type EventScheduler interface {
	Run(ctx context.Context, event *domain.Event) (*domain.Event, error)
}

// EventService defines the interface for event lifecycle logic
type EventService interface {
	// ScheduleEvent validates, checks the venue slot, then persists the
	// event and schedules its reminder as one transaction
	ScheduleEvent(ctx context.Context, req *dto.ScheduleEventRequest) (*domain.Event, error)

	// GetEvents lists events matching the filter
	GetEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error)

	// GetEventByID retrieves a single event
	GetEventByID(ctx context.Context, id string) (*domain.Event, error)

	// UpdateEvent applies a partial update to an event
	UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error)

	// DeleteEvent removes an event and cancels its reminder
	DeleteEvent(ctx context.Context, id string) (*domain.Event, error)

	// DeleteAllEvents removes every event and returns the removed count
	DeleteAllEvents(ctx context.Context) (int64, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo repository.EventRepository
	reminders ReminderService
	scheduler EventScheduler
	validate  *validator.EventValidator
	log       *logger.Logger
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repository.EventRepository,
	reminders ReminderService,
	scheduler EventScheduler,
	validate *validator.EventValidator,
	log *logger.Logger,
) EventService {
	if validate == nil {
		validate = validator.NewEventValidator()
	}
	if log == nil {
		log = logger.Get()
	}
	return &eventService{
		eventRepo: eventRepo,
		reminders: reminders,
		scheduler: scheduler,
		validate:  validate,
		log:       log,
	}
}

// ScheduleEvent admits a new event into the calendar
func (s *eventService) ScheduleEvent(ctx context.Context, req *dto.ScheduleEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.schedule")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "empty request")
		return nil, domain.ErrValidation
	}

	event := req.ToDomain()
	if err := s.validate.ValidateFull(event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("venue", event.Venue),
		attribute.String("title", event.Title),
	)

	// Slot conflict gate: one event per (venue, schedule)
	existing, err := s.eventRepo.FindBySlot(ctx, event.Venue, event.EventSchedule)
	if err != nil && !errors.Is(err, domain.ErrEventNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapInternal(err)
	}
	if existing != nil {
		span.SetStatus(codes.Error, "slot conflict")
		metrics.RecordConflict(ctx, event.Venue)
		s.log.Warn("scheduling conflict",
			zap.String("venue", event.Venue),
			zap.Time("event_schedule", event.EventSchedule),
			zap.String("existing_event_id", existing.ID),
		)
		return nil, domain.ErrSchedulingConflict
	}

	created, err := s.scheduler.Run(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapInternal(err)
	}

	metrics.RecordEventCreated(ctx, created.Venue)
	s.log.Info("event scheduled",
		zap.String("event_id", created.ID),
		zap.String("venue", created.Venue),
		zap.Time("event_schedule", created.EventSchedule),
	)
	return created, nil
}

// GetEvents lists events; an empty result is not an error
func (s *eventService) GetEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	if filter.SortBy != "" {
		if err := s.validate.ValidateSortKey(filter.SortBy); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	events, err := s.eventRepo.Find(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapInternal(err)
	}
	if events == nil {
		events = []*domain.Event{}
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	return events, nil
}

// GetEventByID retrieves a single event
func (s *eventService) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "empty id")
		return nil, domain.ErrEventNotFound
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapInternal(err)
	}
	return event, nil
}

// UpdateEvent applies a partial update. It does not recheck the venue slot
// and does not resynchronize an already-scheduled reminder.
func (s *eventService) UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "empty id")
		return nil, domain.ErrEventNotFound
	}
	if req == nil {
		span.SetStatus(codes.Error, "empty request")
		return nil, domain.ErrValidation
	}

	patch := req.ToPatch()
	if err := s.validate.ValidatePartial(patch); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	updated, err := s.eventRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapInternal(err)
	}

	s.log.Info("event updated", zap.String("event_id", id))
	return updated, nil
}

// DeleteEvent removes an event. Its reminder is cancelled best-effort:
// the delete is authoritative over reminder bookkeeping.
func (s *eventService) DeleteEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "empty id")
		return nil, domain.ErrEventNotFound
	}

	removed, err := s.eventRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapInternal(err)
	}

	s.cancelReminderForEvent(ctx, removed)

	metrics.RecordEventDeleted(ctx, 1)
	s.log.Info("event deleted", zap.String("event_id", id))
	return removed, nil
}

// DeleteAllEvents removes every event
func (s *eventService) DeleteAllEvents(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete_all")
	defer span.End()

	count, err := s.eventRepo.DeleteAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, wrapInternal(err)
	}

	// The events are gone; their queued reminders are orphans. Removal is
	// best-effort, like the per-event cascade.
	if tasks, jobsErr := s.reminders.GetAllJobs(ctx); jobsErr != nil {
		s.log.Warn("reminder enumeration failed during delete all", zap.Error(jobsErr))
	} else {
		for _, task := range tasks {
			if removeErr := s.reminders.RemoveJob(ctx, task.JobID); removeErr != nil {
				s.log.Warn("reminder removal failed during delete all",
					zap.String("job_id", task.JobID),
					zap.Error(removeErr),
				)
			}
		}
	}

	metrics.RecordEventDeleted(ctx, count)
	s.log.Info("all events deleted", zap.Int64("count", count))
	span.SetAttributes(attribute.Int64("count", count))
	return count, nil
}

// cancelReminderForEvent cancels the deleted event's reminder, logging
// failures instead of surfacing them
func (s *eventService) cancelReminderForEvent(ctx context.Context, event *domain.Event) {
	jobID := event.ReminderJobID
	if jobID == "" {
		job, err := s.reminders.GetReminderJob(ctx, LookupKeyEventID, event.ID)
		if err != nil {
			if !errors.Is(err, domain.ErrReminderNotFound) {
				s.log.Warn("reminder lookup failed during delete",
					zap.String("event_id", event.ID),
					zap.Error(err),
				)
			}
			return
		}
		jobID = job.JobID
	}

	if err := s.reminders.CancelReminder(ctx, jobID); err != nil {
		s.log.Warn("reminder cancellation failed during delete",
			zap.String("event_id", event.ID),
			zap.String("job_id", jobID),
			zap.Error(err),
		)
	}
}

// wrapInternal hides collaborator-specific failures behind a stable error.
// Domain errors pass through untouched.
func wrapInternal(err error) error {
	if domain.IsNotFoundError(err) || domain.IsValidationError(err) || domain.IsConflictError(err) {
		return err
	}
	if errors.Is(err, domain.ErrInternal) {
		return err
	}
	return errors.Join(domain.ErrInternal, err)
}
