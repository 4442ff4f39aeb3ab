package domain

import (
	"time"
)

// ReminderOffset is the fixed lead time before an event's start at which its
// reminder fires.
const ReminderOffset = 30 * time.Minute

// ReminderJob is the durable record of a scheduled reminder. Exactly one live
// job exists per event that completed scheduling.
type ReminderJob struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	EventID       string    `json:"eventId" bson:"event_id"`
	JobID         string    `json:"jobId" bson:"job_id"`
	Title         string    `json:"title" bson:"title"`
	EventSchedule time.Time `json:"eventSchedule" bson:"event_schedule"`
	ReminderTime  time.Time `json:"reminderTime" bson:"reminder_time"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// NewReminderJob builds a job for the given event. ReminderTime is always
// derived from the schedule; it is never settable independently.
func NewReminderJob(event *Event, offset time.Duration) *ReminderJob {
	if offset <= 0 {
		offset = ReminderOffset
	}
	return &ReminderJob{
		EventID:       event.ID,
		Title:         event.Title,
		EventSchedule: event.EventSchedule,
		ReminderTime:  event.EventSchedule.Add(-offset),
		CreatedAt:     time.Now().UTC(),
	}
}

// TaskState is a reminder task's lifecycle state as tracked by the queue
type TaskState string

const (
	TaskStateDelayed   TaskState = "delayed"
	TaskStateWaiting   TaskState = "waiting"
	TaskStateActive    TaskState = "active"
	TaskStateSucceeded TaskState = "succeeded"
	TaskStateFailed    TaskState = "failed"
)

// TaskStates lists queue states in the order job enumeration reports them:
// state-then-insertion order, not globally time-sorted.
func TaskStates() []TaskState {
	return []TaskState{TaskStateWaiting, TaskStateActive, TaskStateSucceeded, TaskStateFailed, TaskStateDelayed}
}

// ReminderTask is the payload of one queued reminder
type ReminderTask struct {
	JobID   string    `json:"job_id"`
	EventID string    `json:"event_id"`
	Title   string    `json:"title"`
	FireAt  time.Time `json:"fire_at"`
	State   TaskState `json:"state"`
}

// TaskFailure is the notification delivered when a fired reminder task's
// handler reports an error
type TaskFailure struct {
	JobID    string
	EventID  string
	Err      error
	FailedAt time.Time
}
