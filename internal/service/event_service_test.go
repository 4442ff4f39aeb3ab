package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/internal/dto"
	"github.com/prohmpiriya/event-scheduler/internal/validator"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc           func(ctx context.Context, event *domain.Event) (*domain.Event, error)
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Event, error)
	FindFunc             func(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error)
	FindBySlotFunc       func(ctx context.Context, venue string, schedule time.Time) (*domain.Event, error)
	UpdateFunc           func(ctx context.Context, id string, patch *domain.EventPatch) (*domain.Event, error)
	SetReminderJobIDFunc func(ctx context.Context, id, jobID string) error
	DeleteFunc           func(ctx context.Context, id string) (*domain.Event, error)
	DeleteAllFunc        func(ctx context.Context) (int64, error)
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	out := *event
	out.ID = "event-001"
	return &out, nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) Find(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, filter)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) FindBySlot(ctx context.Context, venue string, schedule time.Time) (*domain.Event, error) {
	if m.FindBySlotFunc != nil {
		return m.FindBySlotFunc(ctx, venue, schedule)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) Update(ctx context.Context, id string, patch *domain.EventPatch) (*domain.Event, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) SetReminderJobID(ctx context.Context, id, jobID string) error {
	if m.SetReminderJobIDFunc != nil {
		return m.SetReminderJobIDFunc(ctx, id, jobID)
	}
	return nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) (*domain.Event, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) DeleteAll(ctx context.Context) (int64, error) {
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx)
	}
	return 0, nil
}

// MockReminderService is a mock implementation of ReminderService
type MockReminderService struct {
	ScheduleReminderFunc func(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error)
	CancelReminderFunc   func(ctx context.Context, jobID string) error
	GetReminderJobFunc   func(ctx context.Context, key, value string) (*domain.ReminderJob, error)
	GetAllJobsFunc       func(ctx context.Context) ([]*domain.ReminderTask, error)
	RemoveJobFunc        func(ctx context.Context, jobID string) error
}

func (m *MockReminderService) ScheduleReminder(ctx context.Context, event *domain.Event) (*domain.ReminderJob, error) {
	if m.ScheduleReminderFunc != nil {
		return m.ScheduleReminderFunc(ctx, event)
	}
	return &domain.ReminderJob{EventID: event.ID, JobID: "job-001"}, nil
}

func (m *MockReminderService) CancelReminder(ctx context.Context, jobID string) error {
	if m.CancelReminderFunc != nil {
		return m.CancelReminderFunc(ctx, jobID)
	}
	return nil
}

func (m *MockReminderService) GetReminderJob(ctx context.Context, key, value string) (*domain.ReminderJob, error) {
	if m.GetReminderJobFunc != nil {
		return m.GetReminderJobFunc(ctx, key, value)
	}
	return nil, domain.ErrReminderNotFound
}

func (m *MockReminderService) GetAllJobs(ctx context.Context) ([]*domain.ReminderTask, error) {
	if m.GetAllJobsFunc != nil {
		return m.GetAllJobsFunc(ctx)
	}
	return []*domain.ReminderTask{}, nil
}

func (m *MockReminderService) RemoveJob(ctx context.Context, jobID string) error {
	if m.RemoveJobFunc != nil {
		return m.RemoveJobFunc(ctx, jobID)
	}
	return nil
}

func (m *MockReminderService) FailureSink() chan<- domain.TaskFailure { return nil }

func (m *MockReminderService) ConsumeFailures(ctx context.Context) {}

// MockEventScheduler is a mock implementation of EventScheduler
type MockEventScheduler struct {
	RunFunc func(ctx context.Context, event *domain.Event) (*domain.Event, error)
}

func (m *MockEventScheduler) Run(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, event)
	}
	out := *event
	out.ID = "event-001"
	out.ReminderJobID = "job-001"
	return &out, nil
}

func fixedValidator() *validator.EventValidator {
	return validator.NewEventValidatorWithClock(func() time.Time {
		return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	})
}

func validScheduleRequest() *dto.ScheduleEventRequest {
	return &dto.ScheduleEventRequest{
		Title:         "Team Standup",
		Description:   "Daily sync",
		Location:      "Bangkok",
		Venue:         "room-a",
		EventSchedule: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Participants:  8,
	}
}

func TestEventService_ScheduleEvent(t *testing.T) {
	tests := []struct {
		name       string
		req        *dto.ScheduleEventRequest
		setupMocks func(*MockEventRepository, *MockEventScheduler)
		wantErr    error
		wantID     bool
	}{
		{
			name:    "successful scheduling",
			req:     validScheduleRequest(),
			wantID:  true,
			wantErr: nil,
		},
		{
			name: "slot conflict rejected",
			req:  validScheduleRequest(),
			setupMocks: func(er *MockEventRepository, sch *MockEventScheduler) {
				er.FindBySlotFunc = func(ctx context.Context, venue string, schedule time.Time) (*domain.Event, error) {
					return &domain.Event{ID: "existing", Venue: venue, EventSchedule: schedule}, nil
				}
			},
			wantErr: domain.ErrSchedulingConflict,
		},
		{
			name: "schedule in the past",
			req: func() *dto.ScheduleEventRequest {
				r := validScheduleRequest()
				r.EventSchedule = time.Date(2026, 4, 30, 10, 0, 0, 0, time.UTC)
				return r
			}(),
			wantErr: domain.ErrStaleSchedule,
		},
		{
			name: "missing title",
			req: func() *dto.ScheduleEventRequest {
				r := validScheduleRequest()
				r.Title = ""
				return r
			}(),
			wantErr: domain.ErrValidation,
		},
		{
			name:    "nil request",
			req:     nil,
			wantErr: domain.ErrValidation,
		},
		{
			name: "reminder scheduling failure surfaces as internal",
			req:  validScheduleRequest(),
			setupMocks: func(er *MockEventRepository, sch *MockEventScheduler) {
				sch.RunFunc = func(ctx context.Context, event *domain.Event) (*domain.Event, error) {
					return nil, errors.New("queue unavailable")
				}
			},
			wantErr: domain.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := &MockEventRepository{}
			scheduler := &MockEventScheduler{}

			if tt.setupMocks != nil {
				tt.setupMocks(eventRepo, scheduler)
			}

			svc := NewEventService(eventRepo, &MockReminderService{}, scheduler, fixedValidator(), nil)

			event, err := svc.ScheduleEvent(context.Background(), tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ScheduleEvent() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("ScheduleEvent() unexpected error = %v", err)
				return
			}
			if tt.wantID && event.ID == "" {
				t.Error("ScheduleEvent() expected event ID, got empty")
			}
			if event.ReminderJobID == "" {
				t.Error("ScheduleEvent() expected reminder job id back-link, got empty")
			}
		})
	}
}

func TestEventService_GetEvents(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.EventFilter
		setupMock func(*MockEventRepository)
		wantErr   error
		wantCount int
	}{
		{
			name:   "events sorted by popularity",
			filter: domain.EventFilter{SortBy: domain.SortByPopularity},
			setupMock: func(er *MockEventRepository) {
				er.FindFunc = func(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
					return []*domain.Event{
						{ID: "a", Participants: 10},
						{ID: "b", Participants: 5},
					}, nil
				}
			},
			wantCount: 2,
		},
		{
			name:      "empty result is not an error",
			filter:    domain.EventFilter{Venue: "room-z"},
			wantCount: 0,
		},
		{
			name:    "unknown sort key rejected",
			filter:  domain.EventFilter{SortBy: "volume"},
			wantErr: domain.ErrInvalidSortKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := &MockEventRepository{}
			if tt.setupMock != nil {
				tt.setupMock(eventRepo)
			}

			svc := NewEventService(eventRepo, &MockReminderService{}, &MockEventScheduler{}, fixedValidator(), nil)

			events, err := svc.GetEvents(context.Background(), tt.filter)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetEvents() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("GetEvents() unexpected error = %v", err)
				return
			}
			if events == nil {
				t.Fatal("GetEvents() returned nil slice")
			}
			if len(events) != tt.wantCount {
				t.Errorf("GetEvents() count = %d, want %d", len(events), tt.wantCount)
			}
		})
	}
}

func TestEventService_GetEventByID(t *testing.T) {
	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			if id == "event-001" {
				return &domain.Event{ID: id, Title: "Team Standup"}, nil
			}
			return nil, domain.ErrEventNotFound
		},
	}
	svc := NewEventService(eventRepo, &MockReminderService{}, &MockEventScheduler{}, fixedValidator(), nil)

	t.Run("existing event", func(t *testing.T) {
		event, err := svc.GetEventByID(context.Background(), "event-001")
		if err != nil {
			t.Fatalf("GetEventByID() unexpected error = %v", err)
		}
		if event.Title != "Team Standup" {
			t.Errorf("GetEventByID() title = %q", event.Title)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetEventByID(context.Background(), "missing")
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Errorf("GetEventByID() error = %v, want %v", err, domain.ErrEventNotFound)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := svc.GetEventByID(context.Background(), "")
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Errorf("GetEventByID() error = %v, want %v", err, domain.ErrEventNotFound)
		}
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	title := "Sprint Review"
	staleSchedule := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		id        string
		req       *dto.UpdateEventRequest
		setupMock func(*MockEventRepository)
		wantErr   error
	}{
		{
			name: "partial update applied",
			id:   "event-001",
			req:  &dto.UpdateEventRequest{Title: &title},
			setupMock: func(er *MockEventRepository) {
				er.UpdateFunc = func(ctx context.Context, id string, patch *domain.EventPatch) (*domain.Event, error) {
					return &domain.Event{ID: id, Title: *patch.Title}, nil
				}
			},
		},
		{
			name:    "empty patch rejected",
			id:      "event-001",
			req:     &dto.UpdateEventRequest{},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "stale schedule rejected",
			id:      "event-001",
			req:     &dto.UpdateEventRequest{EventSchedule: &staleSchedule},
			wantErr: domain.ErrStaleSchedule,
		},
		{
			name:    "unknown event",
			id:      "missing",
			req:     &dto.UpdateEventRequest{Title: &title},
			wantErr: domain.ErrEventNotFound,
		},
		{
			name:    "empty id",
			id:      "",
			req:     &dto.UpdateEventRequest{Title: &title},
			wantErr: domain.ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := &MockEventRepository{}
			if tt.setupMock != nil {
				tt.setupMock(eventRepo)
			}

			svc := NewEventService(eventRepo, &MockReminderService{}, &MockEventScheduler{}, fixedValidator(), nil)

			updated, err := svc.UpdateEvent(context.Background(), tt.id, tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UpdateEvent() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("UpdateEvent() unexpected error = %v", err)
				return
			}
			if updated.Title != title {
				t.Errorf("UpdateEvent() title = %q, want %q", updated.Title, title)
			}
		})
	}
}

func TestEventService_DeleteEvent(t *testing.T) {
	t.Run("delete cancels the reminder", func(t *testing.T) {
		cancelled := ""
		eventRepo := &MockEventRepository{
			DeleteFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				return &domain.Event{ID: id, ReminderJobID: "job-001"}, nil
			},
		}
		reminders := &MockReminderService{
			CancelReminderFunc: func(ctx context.Context, jobID string) error {
				cancelled = jobID
				return nil
			},
		}

		svc := NewEventService(eventRepo, reminders, &MockEventScheduler{}, fixedValidator(), nil)

		removed, err := svc.DeleteEvent(context.Background(), "event-001")
		if err != nil {
			t.Fatalf("DeleteEvent() unexpected error = %v", err)
		}
		if removed.ID != "event-001" {
			t.Errorf("DeleteEvent() returned id = %q", removed.ID)
		}
		if cancelled != "job-001" {
			t.Errorf("DeleteEvent() cancelled job = %q, want job-001", cancelled)
		}
	})

	t.Run("cancellation failure does not fail the delete", func(t *testing.T) {
		eventRepo := &MockEventRepository{
			DeleteFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				return &domain.Event{ID: id, ReminderJobID: "job-001"}, nil
			},
		}
		reminders := &MockReminderService{
			CancelReminderFunc: func(ctx context.Context, jobID string) error {
				return errors.New("queue unavailable")
			},
		}

		svc := NewEventService(eventRepo, reminders, &MockEventScheduler{}, fixedValidator(), nil)

		if _, err := svc.DeleteEvent(context.Background(), "event-001"); err != nil {
			t.Errorf("DeleteEvent() unexpected error = %v", err)
		}
	})

	t.Run("reminder looked up when back-link missing", func(t *testing.T) {
		cancelled := ""
		eventRepo := &MockEventRepository{
			DeleteFunc: func(ctx context.Context, id string) (*domain.Event, error) {
				return &domain.Event{ID: id}, nil
			},
		}
		reminders := &MockReminderService{
			GetReminderJobFunc: func(ctx context.Context, key, value string) (*domain.ReminderJob, error) {
				if key != LookupKeyEventID {
					t.Errorf("lookup key = %q, want %q", key, LookupKeyEventID)
				}
				return &domain.ReminderJob{EventID: value, JobID: "job-002"}, nil
			},
			CancelReminderFunc: func(ctx context.Context, jobID string) error {
				cancelled = jobID
				return nil
			},
		}

		svc := NewEventService(eventRepo, reminders, &MockEventScheduler{}, fixedValidator(), nil)

		if _, err := svc.DeleteEvent(context.Background(), "event-001"); err != nil {
			t.Fatalf("DeleteEvent() unexpected error = %v", err)
		}
		if cancelled != "job-002" {
			t.Errorf("DeleteEvent() cancelled job = %q, want job-002", cancelled)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := NewEventService(&MockEventRepository{}, &MockReminderService{}, &MockEventScheduler{}, fixedValidator(), nil)

		_, err := svc.DeleteEvent(context.Background(), "missing")
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Errorf("DeleteEvent() error = %v, want %v", err, domain.ErrEventNotFound)
		}
	})
}

func TestEventService_DeleteAllEvents(t *testing.T) {
	eventRepo := &MockEventRepository{
		DeleteAllFunc: func(ctx context.Context) (int64, error) {
			return 3, nil
		},
	}
	var removed []string
	reminders := &MockReminderService{
		GetAllJobsFunc: func(ctx context.Context) ([]*domain.ReminderTask, error) {
			return []*domain.ReminderTask{
				{JobID: "job-001", State: domain.TaskStateDelayed},
				{JobID: "job-002", State: domain.TaskStateWaiting},
			}, nil
		},
		RemoveJobFunc: func(ctx context.Context, jobID string) error {
			removed = append(removed, jobID)
			return nil
		},
	}
	svc := NewEventService(eventRepo, reminders, &MockEventScheduler{}, fixedValidator(), nil)

	count, err := svc.DeleteAllEvents(context.Background())
	if err != nil {
		t.Fatalf("DeleteAllEvents() unexpected error = %v", err)
	}
	if count != 3 {
		t.Errorf("DeleteAllEvents() count = %d, want 3", count)
	}
	if !reflect.DeepEqual(removed, []string{"job-001", "job-002"}) {
		t.Errorf("removed jobs = %v, want [job-001 job-002]", removed)
	}
}
