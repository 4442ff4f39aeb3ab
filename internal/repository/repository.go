package repository

import (
	"context"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
)

// EventRepository defines the interface for the event document store
type EventRepository interface {
	// Create persists a new event and returns it with its assigned id
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)

	// GetByID retrieves an event by id; domain.ErrEventNotFound when absent
	// or the id is empty/malformed
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// Find lists events matching the filter in the requested order
	Find(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error)

	// FindBySlot looks up an event occupying the given (venue, schedule)
	// slot; domain.ErrEventNotFound when the slot is free
	FindBySlot(ctx context.Context, venue string, schedule time.Time) (*domain.Event, error)

	// Update applies a partial update and returns the updated event
	Update(ctx context.Context, id string, patch *domain.EventPatch) (*domain.Event, error)

	// SetReminderJobID back-links the event to its reminder job
	SetReminderJobID(ctx context.Context, id, jobID string) error

	// Delete removes an event and returns the removed record
	Delete(ctx context.Context, id string) (*domain.Event, error)

	// DeleteAll removes every event and returns the removed count
	DeleteAll(ctx context.Context) (int64, error)
}

// ReminderJobRepository defines the interface for the reminder job store
type ReminderJobRepository interface {
	// Create persists a new reminder job record
	Create(ctx context.Context, job *domain.ReminderJob) (*domain.ReminderJob, error)

	// FindByEventID retrieves the job owned by the given event;
	// domain.ErrReminderNotFound when absent
	FindByEventID(ctx context.Context, eventID string) (*domain.ReminderJob, error)

	// FindByJobID retrieves the job by its queue-assigned id;
	// domain.ErrReminderNotFound when absent
	FindByJobID(ctx context.Context, jobID string) (*domain.ReminderJob, error)

	// DeleteByJobID removes the record for the given queue job id
	DeleteByJobID(ctx context.Context, jobID string) error

	// DeleteByEventID removes the record owned by the given event
	DeleteByEventID(ctx context.Context, eventID string) error
}

// TaskQueue defines the interface for the delayed reminder task queue
type TaskQueue interface {
	// Enqueue registers a task, carrying its caller-assigned job id, to
	// fire at task.FireAt
	Enqueue(ctx context.Context, task *domain.ReminderTask) error

	// GetTask retrieves a live task by job id; domain.ErrJobNotFound when
	// the queue no longer tracks it
	GetTask(ctx context.Context, jobID string) (*domain.ReminderTask, error)

	// Remove cancels a task; domain.ErrJobNotFound when it is not tracked
	Remove(ctx context.Context, jobID string) error

	// TasksByState enumerates tasks in one lifecycle state, insertion order
	TasksByState(ctx context.Context, state domain.TaskState) ([]*domain.ReminderTask, error)

	// ClaimDue atomically moves tasks whose fire time has passed into the
	// active state and returns them for dispatch
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.ReminderTask, error)

	// MarkSucceeded moves an active task to the succeeded state
	MarkSucceeded(ctx context.Context, jobID string) error

	// MarkFailed moves an active task to the failed state
	MarkFailed(ctx context.Context, jobID string) error
}
