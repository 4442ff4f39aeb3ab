package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
)

var testNow = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func testValidator() *EventValidator {
	return NewEventValidatorWithClock(func() time.Time { return testNow })
}

func validEvent() *domain.Event {
	return &domain.Event{
		Title:         "Team Standup",
		Description:   "Daily sync",
		Location:      "Bangkok",
		Venue:         "room-a",
		EventSchedule: testNow.Add(24 * time.Hour),
		Participants:  8,
	}
}

func TestEventValidator_ValidateFull(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *domain.Event)
		wantErr error
	}{
		{
			name:   "valid event passes",
			mutate: func(e *domain.Event) {},
		},
		{
			name:    "empty title",
			mutate:  func(e *domain.Event) { e.Title = "" },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "empty description",
			mutate:  func(e *domain.Event) { e.Description = "" },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "empty location",
			mutate:  func(e *domain.Event) { e.Location = "" },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "empty venue",
			mutate:  func(e *domain.Event) { e.Venue = "" },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "zero schedule",
			mutate:  func(e *domain.Event) { e.EventSchedule = time.Time{} },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "schedule in the past",
			mutate:  func(e *domain.Event) { e.EventSchedule = testNow.Add(-time.Hour) },
			wantErr: domain.ErrStaleSchedule,
		},
		{
			name:    "negative participants",
			mutate:  func(e *domain.Event) { e.Participants = -1 },
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validEvent()
			tt.mutate(event)

			err := testValidator().ValidateFull(event)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateFull() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFull() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventValidator_ValidateFull_NilEvent(t *testing.T) {
	err := testValidator().ValidateFull(nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ValidateFull(nil) error = %v, want %v", err, domain.ErrValidation)
	}
}

func TestEventValidator_ValidatePartial(t *testing.T) {
	title := "Sprint Review"
	empty := ""
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)
	negative := -2

	tests := []struct {
		name    string
		patch   *domain.EventPatch
		wantErr error
	}{
		{
			name:  "single field patch passes",
			patch: &domain.EventPatch{Title: &title},
		},
		{
			name:  "future schedule passes",
			patch: &domain.EventPatch{EventSchedule: &future},
		},
		{
			name:    "nil patch",
			patch:   nil,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "empty patch",
			patch:   &domain.EventPatch{},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "present but empty title",
			patch:   &domain.EventPatch{Title: &empty},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "schedule in the past",
			patch:   &domain.EventPatch{EventSchedule: &past},
			wantErr: domain.ErrStaleSchedule,
		},
		{
			name:    "negative participants",
			patch:   &domain.EventPatch{Participants: &negative},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testValidator().ValidatePartial(tt.patch)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidatePartial() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePartial() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventValidator_ValidateSortKey(t *testing.T) {
	v := testValidator()

	for _, key := range domain.SortKeys() {
		if err := v.ValidateSortKey(key); err != nil {
			t.Errorf("ValidateSortKey(%q) unexpected error = %v", key, err)
		}
	}
	if err := v.ValidateSortKey(""); err != nil {
		t.Errorf("ValidateSortKey(\"\") unexpected error = %v", err)
	}

	err := v.ValidateSortKey("volume")
	if !errors.Is(err, domain.ErrInvalidSortKey) {
		t.Fatalf("ValidateSortKey(volume) error = %v, want %v", err, domain.ErrInvalidSortKey)
	}
	if !strings.Contains(err.Error(), "popularity, date, creationTime") {
		t.Errorf("error %q does not enumerate the allowed keys", err.Error())
	}
}
