package saga

import (
	"context"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/pkg/logger"
	"github.com/prohmpiriya/event-scheduler/pkg/saga"
	"go.uber.org/zap"
)

// EventStore is the slice of the event repository the saga needs
type EventStore interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	SetReminderJobID(ctx context.Context, id, jobID string) error
	Delete(ctx context.Context, id string) (*domain.Event, error)
}

// ReminderScheduler schedules and cancels reminder jobs for events
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error)
	CancelReminder(ctx context.Context, jobID string) error
}

// ScheduleEventSaga persists an event and schedules its reminder as one
// logical transaction. If reminder scheduling fails, the persisted event
// is deleted so no event exists without its reminder.
type ScheduleEventSaga struct {
	events    EventStore
	reminders ReminderScheduler
	runner    *saga.Runner
	log       *logger.Logger
}

// NewScheduleEventSaga creates a ScheduleEventSaga
func NewScheduleEventSaga(events EventStore, reminders ReminderScheduler, log *logger.Logger) *ScheduleEventSaga {
	var runnerLog saga.Logger = &saga.NoOpLogger{}
	if log != nil {
		runnerLog = &zapSagaLogger{log: log}
	}
	return &ScheduleEventSaga{
		events:    events,
		reminders: reminders,
		runner:    saga.NewRunner(runnerLog),
		log:       log,
	}
}

// Run executes the saga and returns the created event with its reminder
// job id attached.
func (s *ScheduleEventSaga) Run(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	var created *domain.Event
	var job *domain.ReminderJob

	def := saga.NewDefinition("schedule-event")

	def.AddStep(&saga.Step{
		Name: "persist-event",
		Execute: func(ctx context.Context) error {
			out, err := s.events.Create(ctx, event)
			if err != nil {
				return err
			}
			created = out
			return nil
		},
		Compensate: func(ctx context.Context) error {
			_, err := s.events.Delete(ctx, created.ID)
			return err
		},
	})

	def.AddStep(&saga.Step{
		Name: "schedule-reminder",
		Execute: func(ctx context.Context) error {
			j, err := s.reminders.ScheduleReminder(ctx, created)
			if err != nil {
				return err
			}
			job = j
			return nil
		},
		Compensate: func(ctx context.Context) error {
			return s.reminders.CancelReminder(ctx, job.JobID)
		},
	})

	// The back-link is its own step: if it fails, the completed reminder
	// step is compensated so the queued task cannot fire for an event that
	// is about to be rolled back.
	def.AddStep(&saga.Step{
		Name: "link-reminder",
		Execute: func(ctx context.Context) error {
			return s.events.SetReminderJobID(ctx, created.ID, job.JobID)
		},
	})

	result := s.runner.Execute(ctx, def)
	if result.Err != nil {
		return nil, result.Err
	}

	created.ReminderJobID = job.JobID
	return created, nil
}

// zapSagaLogger adapts the structured logger to the runner's key/value
// logging surface.
type zapSagaLogger struct {
	log *logger.Logger
}

func (l *zapSagaLogger) Info(msg string, fields ...interface{}) {
	l.log.Info(msg, toZapFields(fields)...)
}

func (l *zapSagaLogger) Warn(msg string, fields ...interface{}) {
	l.log.Warn(msg, toZapFields(fields)...)
}

func (l *zapSagaLogger) Error(msg string, fields ...interface{}) {
	l.log.Error(msg, toZapFields(fields)...)
}

func toZapFields(kv []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}
