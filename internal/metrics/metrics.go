package metrics

import (
	"context"
	"sync"

	"github.com/prohmpiriya/event-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Event counters
	EventsCreated       *telemetry.Counter
	EventsDeleted       *telemetry.Counter
	SchedulingConflicts *telemetry.Counter

	// Reminder counters
	RemindersScheduled *telemetry.Counter
	RemindersCancelled *telemetry.Counter
	RemindersFired     *telemetry.Counter
	RemindersFailed    *telemetry.Counter

	// Batch counters
	BatchItemsTotal *telemetry.Counter

	// Histograms
	RequestDuration  *telemetry.Histogram
	DispatchDuration *telemetry.Histogram

	// Gauges
	PendingReminders *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all scheduler metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	EventsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "scheduler_events_created_total",
		Description: "Total number of events scheduled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsDeleted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "scheduler_events_deleted_total",
		Description: "Total number of events deleted",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SchedulingConflicts, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "scheduler_conflicts_total",
		Description: "Total number of rejected venue slot conflicts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RemindersScheduled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "scheduler_reminders_scheduled_total",
		Description: "Total number of reminder jobs scheduled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RemindersCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "scheduler_reminders_cancelled_total",
		Description: "Total number of reminder jobs cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RemindersFired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "scheduler_reminders_fired_total",
		Description: "Total number of reminders delivered",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RemindersFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "scheduler_reminders_failed_total",
		Description: "Total number of reminder deliveries that failed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BatchItemsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "scheduler_batch_items_total",
		Description: "Total number of batch items processed by operation and outcome",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "scheduler_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	DispatchDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "scheduler_dispatch_duration_seconds",
		Description: "Time from a reminder becoming due to its delivery",
		Unit:        "s",
	}, []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60})
	if err != nil {
		return err
	}

	PendingReminders, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "scheduler_pending_reminders",
		Description: "Current number of reminders waiting to fire",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordEventCreated records a scheduled event
func RecordEventCreated(ctx context.Context, venue string) {
	if EventsCreated != nil {
		EventsCreated.Inc(ctx, attribute.String("venue", venue))
	}
}

// RecordEventDeleted records deleted events
func RecordEventDeleted(ctx context.Context, count int64) {
	if EventsDeleted != nil {
		EventsDeleted.Add(ctx, count)
	}
}

// RecordConflict records a rejected slot conflict
func RecordConflict(ctx context.Context, venue string) {
	if SchedulingConflicts != nil {
		SchedulingConflicts.Inc(ctx, attribute.String("venue", venue))
	}
}

// RecordReminderScheduled records a newly scheduled reminder
func RecordReminderScheduled(ctx context.Context) {
	if RemindersScheduled != nil {
		RemindersScheduled.Inc(ctx)
	}
	if PendingReminders != nil {
		PendingReminders.Inc(ctx)
	}
}

// RecordReminderCancelled records a cancelled reminder
func RecordReminderCancelled(ctx context.Context) {
	if RemindersCancelled != nil {
		RemindersCancelled.Inc(ctx)
	}
	if PendingReminders != nil {
		PendingReminders.Dec(ctx)
	}
}

// RecordReminderFired records a delivered reminder and its dispatch lag
func RecordReminderFired(ctx context.Context, lagSeconds float64) {
	if RemindersFired != nil {
		RemindersFired.Inc(ctx)
	}
	if DispatchDuration != nil {
		DispatchDuration.Record(ctx, lagSeconds)
	}
	if PendingReminders != nil {
		PendingReminders.Dec(ctx)
	}
}

// RecordReminderFailed records a failed reminder delivery
func RecordReminderFailed(ctx context.Context, reason string) {
	if RemindersFailed != nil {
		RemindersFailed.Inc(ctx, attribute.String("reason", reason))
	}
	if PendingReminders != nil {
		PendingReminders.Dec(ctx)
	}
}

// RecordBatchItem records one processed batch item by operation and outcome
func RecordBatchItem(ctx context.Context, operation string, succeeded bool) {
	if BatchItemsTotal != nil {
		BatchItemsTotal.Inc(ctx,
			attribute.String("operation", operation),
			attribute.Bool("succeeded", succeeded),
		)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
