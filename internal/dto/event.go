package dto

import (
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
)

// ScheduleEventRequest represents the body of POST /events
type ScheduleEventRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Venue         string    `json:"venue"`
	EventSchedule time.Time `json:"eventSchedule"`
	Participants  int       `json:"participants"`
}

// ToDomain converts the request to a domain event
func (r *ScheduleEventRequest) ToDomain() *domain.Event {
	return &domain.Event{
		Title:         r.Title,
		Description:   r.Description,
		Location:      r.Location,
		Venue:         r.Venue,
		EventSchedule: r.EventSchedule,
		Participants:  r.Participants,
	}
}

// UpdateEventRequest represents the body of PUT /events/:id. Absent fields
// stay untouched.
type UpdateEventRequest struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Location      *string    `json:"location,omitempty"`
	Venue         *string    `json:"venue,omitempty"`
	EventSchedule *time.Time `json:"eventSchedule,omitempty"`
	Participants  *int       `json:"participants,omitempty"`
}

// ToPatch converts the request to a domain patch
func (r *UpdateEventRequest) ToPatch() *domain.EventPatch {
	return &domain.EventPatch{
		Title:         r.Title,
		Description:   r.Description,
		Location:      r.Location,
		Venue:         r.Venue,
		EventSchedule: r.EventSchedule,
		Participants:  r.Participants,
	}
}
