package validator

import (
	"fmt"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
)

// EventValidator checks event payloads before they reach the store. A failed
// check never partially applies a mutation; the caller gets a validation
// error carrying the reason and nothing is written.
type EventValidator struct {
	now func() time.Time
}

// NewEventValidator creates a validator using the wall clock
func NewEventValidator() *EventValidator {
	return &EventValidator{now: time.Now}
}

// NewEventValidatorWithClock creates a validator with an injected clock
func NewEventValidatorWithClock(now func() time.Time) *EventValidator {
	return &EventValidator{now: now}
}

// ValidateFull checks a complete event payload: every attribute must be
// present and well formed, and the schedule must not be in the past.
func (v *EventValidator) ValidateFull(event *domain.Event) error {
	if event == nil {
		return fmt.Errorf("%w: event payload is required", domain.ErrValidation)
	}
	if event.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}
	if event.Description == "" {
		return fmt.Errorf("%w: description cannot be empty", domain.ErrValidation)
	}
	if event.Location == "" {
		return fmt.Errorf("%w: location cannot be empty", domain.ErrValidation)
	}
	if event.Venue == "" {
		return fmt.Errorf("%w: venue cannot be empty", domain.ErrValidation)
	}
	if event.EventSchedule.IsZero() {
		return fmt.Errorf("%w: eventSchedule cannot be empty", domain.ErrValidation)
	}
	if event.EventSchedule.Before(v.now()) {
		return fmt.Errorf("%w: eventSchedule %s is in the past", domain.ErrStaleSchedule,
			event.EventSchedule.Format(time.RFC3339))
	}
	if event.Participants < 0 {
		return fmt.Errorf("%w: participants cannot be negative", domain.ErrValidation)
	}
	return nil
}

// ValidatePartial checks only the fields a patch actually carries, applying
// the same shape rules as full validation.
func (v *EventValidator) ValidatePartial(patch *domain.EventPatch) error {
	if patch == nil || patch.IsEmpty() {
		return fmt.Errorf("%w: update payload is empty", domain.ErrValidation)
	}
	if patch.Title != nil && *patch.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}
	if patch.Description != nil && *patch.Description == "" {
		return fmt.Errorf("%w: description cannot be empty", domain.ErrValidation)
	}
	if patch.Location != nil && *patch.Location == "" {
		return fmt.Errorf("%w: location cannot be empty", domain.ErrValidation)
	}
	if patch.Venue != nil && *patch.Venue == "" {
		return fmt.Errorf("%w: venue cannot be empty", domain.ErrValidation)
	}
	if patch.EventSchedule != nil {
		if patch.EventSchedule.IsZero() {
			return fmt.Errorf("%w: eventSchedule cannot be empty", domain.ErrValidation)
		}
		if patch.EventSchedule.Before(v.now()) {
			return fmt.Errorf("%w: eventSchedule %s is in the past", domain.ErrStaleSchedule,
				patch.EventSchedule.Format(time.RFC3339))
		}
	}
	if patch.Participants != nil && *patch.Participants < 0 {
		return fmt.Errorf("%w: participants cannot be negative", domain.ErrValidation)
	}
	return nil
}

// ValidateSortKey checks a list ordering key against the supported set
func (v *EventValidator) ValidateSortKey(key domain.SortKey) error {
	if key == "" {
		return nil
	}
	for _, allowed := range domain.SortKeys() {
		if key == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not supported, allowed values: popularity, date, creationTime",
		domain.ErrInvalidSortKey, key)
}
