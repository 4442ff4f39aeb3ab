package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEventStore struct {
	createFunc           func(ctx context.Context, event *domain.Event) (*domain.Event, error)
	setReminderJobIDFunc func(ctx context.Context, id, jobID string) error
	deleteFunc           func(ctx context.Context, id string) (*domain.Event, error)
}

func (m *mockEventStore) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	return m.createFunc(ctx, event)
}

func (m *mockEventStore) SetReminderJobID(ctx context.Context, id, jobID string) error {
	return m.setReminderJobIDFunc(ctx, id, jobID)
}

func (m *mockEventStore) Delete(ctx context.Context, id string) (*domain.Event, error) {
	return m.deleteFunc(ctx, id)
}

type mockReminderScheduler struct {
	scheduleFunc func(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error)
	cancelFunc   func(ctx context.Context, jobID string) error
}

func (m *mockReminderScheduler) ScheduleReminder(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error) {
	return m.scheduleFunc(ctx, event)
}

func (m *mockReminderScheduler) CancelReminder(ctx context.Context, jobID string) error {
	return m.cancelFunc(ctx, jobID)
}

func testEvent() *domain.Event {
	return &domain.Event{
		Title:         "Team Standup",
		Venue:         "room-a",
		EventSchedule: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestScheduleEventSaga_Run(t *testing.T) {
	t.Run("both steps succeed", func(t *testing.T) {
		events := &mockEventStore{
			createFunc: func(ctx context.Context, event *domain.Event) (*domain.Event, error) {
				out := *event
				out.ID = "event-1"
				return &out, nil
			},
			setReminderJobIDFunc: func(ctx context.Context, id, jobID string) error {
				assert.Equal(t, "event-1", id)
				assert.Equal(t, "job-1", jobID)
				return nil
			},
		}
		reminders := &mockReminderScheduler{
			scheduleFunc: func(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error) {
				return &domain.ReminderJob{EventID: event.ID, JobID: "job-1"}, nil
			},
		}

		s := NewScheduleEventSaga(events, reminders, nil)
		created, err := s.Run(context.Background(), testEvent())
		require.NoError(t, err)
		assert.Equal(t, "event-1", created.ID)
		assert.Equal(t, "job-1", created.ReminderJobID)
	})

	t.Run("reminder failure deletes the persisted event", func(t *testing.T) {
		deleted := false
		events := &mockEventStore{
			createFunc: func(ctx context.Context, event *domain.Event) (*domain.Event, error) {
				out := *event
				out.ID = "event-1"
				return &out, nil
			},
			deleteFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				deleted = true
				assert.Equal(t, "event-1", id)
				return &domain.Event{ID: id}, nil
			},
		}
		schedErr := errors.New("queue unavailable")
		reminders := &mockReminderScheduler{
			scheduleFunc: func(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error) {
				return nil, schedErr
			},
		}

		s := NewScheduleEventSaga(events, reminders, nil)
		_, err := s.Run(context.Background(), testEvent())
		assert.ErrorIs(t, err, schedErr)
		assert.True(t, deleted)
	})

	t.Run("back-link failure cancels the reminder and deletes the event", func(t *testing.T) {
		deleted := false
		cancelled := false
		linkErr := errors.New("write failed")
		events := &mockEventStore{
			createFunc: func(ctx context.Context, event *domain.Event) (*domain.Event, error) {
				out := *event
				out.ID = "event-1"
				return &out, nil
			},
			setReminderJobIDFunc: func(ctx context.Context, id, jobID string) error {
				return linkErr
			},
			deleteFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				deleted = true
				return &domain.Event{ID: id}, nil
			},
		}
		reminders := &mockReminderScheduler{
			scheduleFunc: func(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error) {
				return &domain.ReminderJob{EventID: event.ID, JobID: "job-1"}, nil
			},
			cancelFunc: func(ctx context.Context, jobID string) error {
				cancelled = true
				assert.Equal(t, "job-1", jobID)
				return nil
			},
		}

		s := NewScheduleEventSaga(events, reminders, nil)
		_, err := s.Run(context.Background(), testEvent())
		assert.ErrorIs(t, err, linkErr)
		assert.True(t, cancelled)
		assert.True(t, deleted)
	})

	t.Run("create failure compensates nothing", func(t *testing.T) {
		createErr := errors.New("insert failed")
		events := &mockEventStore{
			createFunc: func(ctx context.Context, event *domain.Event) (*domain.Event, error) {
				return nil, createErr
			},
			deleteFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				t.Fatal("delete should not be called")
				return nil, nil
			},
		}
		reminders := &mockReminderScheduler{
			scheduleFunc: func(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error) {
				t.Fatal("schedule should not be called")
				return nil, nil
			},
		}

		s := NewScheduleEventSaga(events, reminders, nil)
		_, err := s.Run(context.Background(), testEvent())
		assert.ErrorIs(t, err, createErr)
	})
}
