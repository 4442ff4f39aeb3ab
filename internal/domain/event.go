package domain

import (
	"time"
)

// Event represents a scheduled event at a venue
type Event struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Title         string    `json:"title" bson:"title"`
	Description   string    `json:"description" bson:"description"`
	Location      string    `json:"location" bson:"location"`
	Venue         string    `json:"venue" bson:"venue"`
	EventSchedule time.Time `json:"eventSchedule" bson:"event_schedule"`
	Participants  int       `json:"participants" bson:"participants"`

	// ReminderJobID is set once the event's reminder has been scheduled
	ReminderJobID string `json:"reminderJobId,omitempty" bson:"reminder_job_id,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// EventPatch carries the fields of a partial update. Nil pointers mean the
// field is not being changed.
type EventPatch struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Location      *string    `json:"location,omitempty"`
	Venue         *string    `json:"venue,omitempty"`
	EventSchedule *time.Time `json:"eventSchedule,omitempty"`
	Participants  *int       `json:"participants,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p *EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil &&
		p.Venue == nil && p.EventSchedule == nil && p.Participants == nil
}

// SortKey identifies a supported event list ordering
type SortKey string

const (
	SortByPopularity   SortKey = "popularity"   // participants descending
	SortByDate         SortKey = "date"         // event schedule ascending
	SortByCreationTime SortKey = "creationTime" // created_at ascending
)

// SortKeys lists every supported sort key, in the order they are reported
// back to callers on a validation failure.
func SortKeys() []SortKey {
	return []SortKey{SortByPopularity, SortByDate, SortByCreationTime}
}

// EventFilter narrows an event listing. Empty fields are omitted from the
// query, not wildcarded.
type EventFilter struct {
	Venue    string
	Location string
	SortBy   SortKey
}
