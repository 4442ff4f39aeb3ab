package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/internal/metrics"
	"github.com/prohmpiriya/event-scheduler/internal/repository"
	"github.com/prohmpiriya/event-scheduler/pkg/logger"
	"github.com/prohmpiriya/event-scheduler/pkg/retry"
	"go.uber.org/zap"
)

// DeliverFunc delivers one fired reminder. An error marks the task failed
// and reports it on the failure channel.
type DeliverFunc func(ctx context.Context, task *domain.ReminderTask) error

// ReminderWorkerConfig contains configuration for the reminder worker
type ReminderWorkerConfig struct {
	// ScanInterval is the interval between scans of the delayed set
	ScanInterval time.Duration
	// BatchSize is the number of due tasks to claim in each scan
	BatchSize int
	// DeliveryRetries is the number of redelivery attempts before a task
	// is settled as failed. Zero means a single attempt.
	DeliveryRetries int
	// DeliveryRetryInterval is the initial backoff between redeliveries
	DeliveryRetryInterval time.Duration
}

// DefaultReminderWorkerConfig returns default configuration
func DefaultReminderWorkerConfig() *ReminderWorkerConfig {
	return &ReminderWorkerConfig{
		ScanInterval: time.Second,
		BatchSize:    100,
	}
}

// ReminderWorker claims due reminder tasks and dispatches them. Delivery is
// at-least-once: a task is settled only after its handler returns.
type ReminderWorker struct {
	queue    repository.TaskQueue
	deliver  DeliverFunc
	failures chan<- domain.TaskFailure
	config   *ReminderWorkerConfig
	log      *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	// Stats
	totalFired   int64
	totalFailed  int64
	lastScanTime time.Time
}

// NewReminderWorker creates a new reminder worker. A nil deliver func falls
// back to logging the reminder.
func NewReminderWorker(
	queue repository.TaskQueue,
	deliver DeliverFunc,
	failures chan<- domain.TaskFailure,
	config *ReminderWorkerConfig,
) *ReminderWorker {
	if config == nil {
		config = DefaultReminderWorkerConfig()
	}

	w := &ReminderWorker{
		queue:    queue,
		deliver:  deliver,
		failures: failures,
		config:   config,
		log:      logger.Get(),
		stopCh:   make(chan struct{}),
	}
	if w.deliver == nil {
		w.deliver = w.logReminder
	}
	return w
}

// Start starts the reminder worker
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("reminder worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting reminder worker")

	w.wg.Add(1)
	go w.scanDueTasks(ctx)

	return nil
}

// Stop stops the reminder worker
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping reminder worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Reminder worker stopped")
}

// scanDueTasks periodically claims and dispatches due tasks
func (w *ReminderWorker) scanDueTasks(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.processDueTasks(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processDueTasks(ctx)
		}
	}
}

// processDueTasks claims one batch of due tasks and dispatches each
func (w *ReminderWorker) processDueTasks(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	tasks, err := w.queue.ClaimDue(ctx, time.Now(), w.config.BatchSize)
	if err != nil {
		w.log.Error("Failed to claim due tasks", zap.Error(err))
		return
	}

	if len(tasks) == 0 {
		return
	}

	w.log.Info("Claimed due reminder tasks", zap.Int("count", len(tasks)))

	for _, task := range tasks {
		w.dispatch(ctx, task)
	}
}

// dispatch delivers a single task and settles it
func (w *ReminderWorker) dispatch(ctx context.Context, task *domain.ReminderTask) {
	result := retry.Do(ctx, &retry.Config{
		MaxRetries:      w.config.DeliveryRetries,
		InitialInterval: w.config.DeliveryRetryInterval,
	}, func(ctx context.Context) error {
		return w.deliver(ctx, task)
	})

	if result.Err != nil {
		err := result.LastError
		if err == nil {
			err = result.Err
		}

		w.mu.Lock()
		w.totalFailed++
		w.mu.Unlock()

		w.log.Error("Reminder delivery failed",
			zap.String("job_id", task.JobID),
			zap.String("event_id", task.EventID),
			zap.Int("attempts", result.Attempts),
			zap.Error(err),
		)
		if markErr := w.queue.MarkFailed(ctx, task.JobID); markErr != nil {
			w.log.Error("Failed to settle task as failed",
				zap.String("job_id", task.JobID),
				zap.Error(markErr),
			)
		}
		w.reportFailure(domain.TaskFailure{
			JobID:    task.JobID,
			EventID:  task.EventID,
			Err:      err,
			FailedAt: time.Now().UTC(),
		})
		return
	}

	w.mu.Lock()
	w.totalFired++
	w.mu.Unlock()

	metrics.RecordReminderFired(ctx, time.Since(task.FireAt).Seconds())
	if err := w.queue.MarkSucceeded(ctx, task.JobID); err != nil {
		w.log.Error("Failed to settle task as succeeded",
			zap.String("job_id", task.JobID),
			zap.Error(err),
		)
	}
}

// reportFailure pushes a failure notification without ever blocking dispatch
func (w *ReminderWorker) reportFailure(failure domain.TaskFailure) {
	if w.failures == nil {
		return
	}
	select {
	case w.failures <- failure:
	default:
		w.log.Warn("Failure channel full, dropping notification",
			zap.String("job_id", failure.JobID),
		)
	}
}

// logReminder is the default delivery handler
func (w *ReminderWorker) logReminder(ctx context.Context, task *domain.ReminderTask) error {
	w.log.Info("Reminder sent",
		zap.String("job_id", task.JobID),
		zap.String("event_id", task.EventID),
		zap.String("title", task.Title),
		zap.Time("fire_at", task.FireAt),
	)
	return nil
}

// GetStats returns worker statistics
func (w *ReminderWorker) GetStats() *ReminderWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &ReminderWorkerStats{
		IsRunning:    w.running,
		TotalFired:   w.totalFired,
		TotalFailed:  w.totalFailed,
		LastScanTime: w.lastScanTime,
	}
}

// ReminderWorkerStats contains worker statistics
type ReminderWorkerStats struct {
	IsRunning    bool      `json:"is_running"`
	TotalFired   int64     `json:"total_fired"`
	TotalFailed  int64     `json:"total_failed"`
	LastScanTime time.Time `json:"last_scan_time"`
}
