package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
)

// MockTaskQueue is a mock implementation of repository.TaskQueue
type MockTaskQueue struct {
	EnqueueFunc       func(ctx context.Context, task *domain.ReminderTask) error
	GetTaskFunc       func(ctx context.Context, jobID string) (*domain.ReminderTask, error)
	RemoveFunc        func(ctx context.Context, jobID string) error
	TasksByStateFunc  func(ctx context.Context, state domain.TaskState) ([]*domain.ReminderTask, error)
	ClaimDueFunc      func(ctx context.Context, now time.Time, batchSize int) ([]*domain.ReminderTask, error)
	MarkSucceededFunc func(ctx context.Context, jobID string) error
	MarkFailedFunc    func(ctx context.Context, jobID string) error
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task *domain.ReminderTask) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, task)
	}
	return nil
}

func (m *MockTaskQueue) GetTask(ctx context.Context, jobID string) (*domain.ReminderTask, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, jobID)
	}
	return nil, domain.ErrJobNotFound
}

func (m *MockTaskQueue) Remove(ctx context.Context, jobID string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, jobID)
	}
	return nil
}

func (m *MockTaskQueue) TasksByState(ctx context.Context, state domain.TaskState) ([]*domain.ReminderTask, error) {
	if m.TasksByStateFunc != nil {
		return m.TasksByStateFunc(ctx, state)
	}
	return []*domain.ReminderTask{}, nil
}

func (m *MockTaskQueue) ClaimDue(ctx context.Context, now time.Time, batchSize int) ([]*domain.ReminderTask, error) {
	if m.ClaimDueFunc != nil {
		return m.ClaimDueFunc(ctx, now, batchSize)
	}
	return []*domain.ReminderTask{}, nil
}

func (m *MockTaskQueue) MarkSucceeded(ctx context.Context, jobID string) error {
	if m.MarkSucceededFunc != nil {
		return m.MarkSucceededFunc(ctx, jobID)
	}
	return nil
}

func (m *MockTaskQueue) MarkFailed(ctx context.Context, jobID string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, jobID)
	}
	return nil
}

func dueTask(jobID string) *domain.ReminderTask {
	return &domain.ReminderTask{
		JobID:   jobID,
		EventID: "event-001",
		Title:   "Team Standup",
		FireAt:  time.Now().Add(-time.Second),
		State:   domain.TaskStateActive,
	}
}

func TestReminderWorker_ProcessDueTasks(t *testing.T) {
	t.Run("delivered task settles as succeeded", func(t *testing.T) {
		succeeded := ""
		queue := &MockTaskQueue{
			ClaimDueFunc: func(ctx context.Context, now time.Time, batchSize int) ([]*domain.ReminderTask, error) {
				return []*domain.ReminderTask{dueTask("job-1")}, nil
			},
			MarkSucceededFunc: func(ctx context.Context, jobID string) error {
				succeeded = jobID
				return nil
			},
			MarkFailedFunc: func(ctx context.Context, jobID string) error {
				t.Errorf("MarkFailed called for %s", jobID)
				return nil
			},
		}

		delivered := ""
		w := NewReminderWorker(queue, func(ctx context.Context, task *domain.ReminderTask) error {
			delivered = task.JobID
			return nil
		}, nil, nil)

		w.processDueTasks(context.Background())

		if delivered != "job-1" {
			t.Errorf("delivered = %q, want job-1", delivered)
		}
		if succeeded != "job-1" {
			t.Errorf("settled succeeded = %q, want job-1", succeeded)
		}
		if stats := w.GetStats(); stats.TotalFired != 1 {
			t.Errorf("total fired = %d, want 1", stats.TotalFired)
		}
	})

	t.Run("failed delivery settles as failed and reports", func(t *testing.T) {
		failed := ""
		queue := &MockTaskQueue{
			ClaimDueFunc: func(ctx context.Context, now time.Time, batchSize int) ([]*domain.ReminderTask, error) {
				return []*domain.ReminderTask{dueTask("job-1")}, nil
			},
			MarkFailedFunc: func(ctx context.Context, jobID string) error {
				failed = jobID
				return nil
			},
		}

		deliverErr := errors.New("smtp down")
		failures := make(chan domain.TaskFailure, 1)
		w := NewReminderWorker(queue, func(ctx context.Context, task *domain.ReminderTask) error {
			return deliverErr
		}, failures, nil)

		w.processDueTasks(context.Background())

		if failed != "job-1" {
			t.Errorf("settled failed = %q, want job-1", failed)
		}

		select {
		case failure := <-failures:
			if failure.JobID != "job-1" || !errors.Is(failure.Err, deliverErr) {
				t.Errorf("failure = %+v", failure)
			}
		default:
			t.Error("no failure notification received")
		}
	})

	t.Run("one failing task does not stop the batch", func(t *testing.T) {
		var settled []string
		queue := &MockTaskQueue{
			ClaimDueFunc: func(ctx context.Context, now time.Time, batchSize int) ([]*domain.ReminderTask, error) {
				return []*domain.ReminderTask{dueTask("job-1"), dueTask("job-2")}, nil
			},
			MarkSucceededFunc: func(ctx context.Context, jobID string) error {
				settled = append(settled, jobID)
				return nil
			},
		}

		w := NewReminderWorker(queue, func(ctx context.Context, task *domain.ReminderTask) error {
			if task.JobID == "job-1" {
				return errors.New("boom")
			}
			return nil
		}, nil, nil)

		w.processDueTasks(context.Background())

		if len(settled) != 1 || settled[0] != "job-2" {
			t.Errorf("settled = %v, want [job-2]", settled)
		}
	})

	t.Run("full failure channel never blocks dispatch", func(t *testing.T) {
		queue := &MockTaskQueue{
			ClaimDueFunc: func(ctx context.Context, now time.Time, batchSize int) ([]*domain.ReminderTask, error) {
				return []*domain.ReminderTask{dueTask("job-1")}, nil
			},
		}

		failures := make(chan domain.TaskFailure) // unbuffered, nobody reading
		w := NewReminderWorker(queue, func(ctx context.Context, task *domain.ReminderTask) error {
			return errors.New("boom")
		}, failures, nil)

		done := make(chan struct{})
		go func() {
			w.processDueTasks(context.Background())
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("dispatch blocked on failure channel")
		}
	})
}

func TestReminderWorker_StartStop(t *testing.T) {
	claimed := make(chan struct{}, 1)
	queue := &MockTaskQueue{
		ClaimDueFunc: func(ctx context.Context, now time.Time, batchSize int) ([]*domain.ReminderTask, error) {
			select {
			case claimed <- struct{}{}:
			default:
			}
			return []*domain.ReminderTask{}, nil
		},
	}

	w := NewReminderWorker(queue, nil, nil, &ReminderWorkerConfig{
		ScanInterval: 10 * time.Millisecond,
		BatchSize:    10,
	})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Error("Start() twice should fail")
	}

	select {
	case <-claimed:
	case <-time.After(time.Second):
		t.Fatal("worker never scanned the queue")
	}

	w.Stop()
	w.Stop() // second stop is a no-op

	if stats := w.GetStats(); stats.IsRunning {
		t.Error("worker still reported running after Stop")
	}
}

func TestReminderWorker_RetriesDelivery(t *testing.T) {
	succeeded := ""
	queue := &MockTaskQueue{
		ClaimDueFunc: func(ctx context.Context, now time.Time, batchSize int) ([]*domain.ReminderTask, error) {
			return []*domain.ReminderTask{dueTask("job-1")}, nil
		},
		MarkSucceededFunc: func(ctx context.Context, jobID string) error {
			succeeded = jobID
			return nil
		},
		MarkFailedFunc: func(ctx context.Context, jobID string) error {
			t.Errorf("MarkFailed called for %s", jobID)
			return nil
		},
	}

	attempts := 0
	w := NewReminderWorker(queue, func(ctx context.Context, task *domain.ReminderTask) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil, &ReminderWorkerConfig{
		ScanInterval:          time.Second,
		BatchSize:             10,
		DeliveryRetries:       2,
		DeliveryRetryInterval: time.Millisecond,
	})

	w.processDueTasks(context.Background())

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if succeeded != "job-1" {
		t.Errorf("settled succeeded = %q, want job-1", succeeded)
	}
}
