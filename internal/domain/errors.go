package domain

import "errors"

// Domain errors
var (
	// Event errors
	ErrEventNotFound      = errors.New("event not found")
	ErrSchedulingConflict = errors.New("venue already booked for this time slot")

	// Reminder errors
	ErrReminderNotFound = errors.New("reminder not found for event")
	ErrJobNotFound      = errors.New("job not found")
	ErrEmptyJobID       = errors.New("reminder job id is empty")

	// Validation errors
	ErrValidation        = errors.New("validation failed")
	ErrInvalidEventID    = errors.New("invalid event id")
	ErrInvalidSortKey    = errors.New("invalid sort key")
	ErrStaleSchedule     = errors.New("event schedule must not be in the past")
	ErrInvalidLookupKey  = errors.New("lookup key must be eventId or jobId")
	ErrEmptyLookupValue  = errors.New("lookup value is empty")

	// Infrastructure failures not otherwise classified
	ErrInternal = errors.New("internal error")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrReminderNotFound) ||
		errors.Is(err, ErrJobNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidSortKey) ||
		errors.Is(err, ErrStaleSchedule) ||
		errors.Is(err, ErrInvalidLookupKey) ||
		errors.Is(err, ErrEmptyLookupValue) ||
		errors.Is(err, ErrEmptyJobID)
}

// IsConflictError checks if the error is a scheduling conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSchedulingConflict)
}
