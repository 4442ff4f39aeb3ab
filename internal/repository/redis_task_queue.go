package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/pkg/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Redis key layout for reminder tasks
const (
	jobKeyPrefix     = "reminder:job:"
	delayedZSetKey   = "reminder:delayed"
	waitingListKey   = "reminder:waiting"
	activeListKey    = "reminder:active"
	succeededListKey = "reminder:succeeded"
	failedListKey    = "reminder:failed"
)

// enqueueScript writes the task hash and registers it in the delayed set
// in one round trip.
const enqueueScript = `
redis.call('HSET', KEYS[1], 'job_id', ARGV[1], 'event_id', ARGV[2], 'title', ARGV[3], 'fire_at', ARGV[4], 'state', ARGV[5])
redis.call('ZADD', KEYS[2], ARGV[4], ARGV[1])
return 1
`

// claimDueScript atomically moves due tasks from the delayed set to the
// active list so concurrent dispatchers never claim the same task twice.
const claimDueScript = `
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
for _, id in ipairs(due) do
	redis.call('ZREM', KEYS[1], id)
	redis.call('RPUSH', KEYS[2], id)
	redis.call('HSET', ARGV[3] .. id, 'state', 'active')
end
return due
`

// removeScript erases a task from every structure it may live in and
// reports whether it existed at all.
const removeScript = `
local existed = redis.call('EXISTS', KEYS[1])
if existed == 0 then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[2], ARGV[1])
redis.call('LREM', KEYS[3], 0, ARGV[1])
redis.call('LREM', KEYS[4], 0, ARGV[1])
redis.call('LREM', KEYS[5], 0, ARGV[1])
redis.call('LREM', KEYS[6], 0, ARGV[1])
return 1
`

// settleScript moves a task off the active list into a terminal list and
// records its final state.
const settleScript = `
redis.call('LREM', KEYS[1], 0, ARGV[1])
redis.call('RPUSH', KEYS[2], ARGV[1])
redis.call('HSET', KEYS[3], 'state', ARGV[2])
return 1
`

// RedisTaskQueue implements TaskQueue on top of Redis. Delayed tasks live
// in a sorted set scored by fire time; every other state is an ordered list.
type RedisTaskQueue struct {
	client *redis.Client
}

// NewRedisTaskQueue creates a new RedisTaskQueue
func NewRedisTaskQueue(client *redis.Client) *RedisTaskQueue {
	return &RedisTaskQueue{client: client}
}

func jobKey(jobID string) string {
	return jobKeyPrefix + jobID
}

func stateListKey(state domain.TaskState) string {
	switch state {
	case domain.TaskStateWaiting:
		return waitingListKey
	case domain.TaskStateActive:
		return activeListKey
	case domain.TaskStateSucceeded:
		return succeededListKey
	case domain.TaskStateFailed:
		return failedListKey
	}
	return ""
}

// Enqueue registers a delayed task that becomes due at task.FireAt
func (q *RedisTaskQueue) Enqueue(ctx context.Context, task *domain.ReminderTask) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.enqueue")
	defer span.End()

	span.SetAttributes(
		attribute.String("job_id", task.JobID),
		attribute.String("event_id", task.EventID),
	)

	keys := []string{jobKey(task.JobID), delayedZSetKey}
	args := []interface{}{
		task.JobID,
		task.EventID,
		task.Title,
		task.FireAt.Unix(),
		string(domain.TaskStateDelayed),
	}

	if err := q.client.Eval(ctx, enqueueScript, keys, args...).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// GetTask loads a single task by its job id
func (q *RedisTaskQueue) GetTask(ctx context.Context, jobID string) (*domain.ReminderTask, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.get_task")
	defer span.End()

	span.SetAttributes(attribute.String("job_id", jobID))

	fields, err := q.client.HGetAll(ctx, jobKey(jobID)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrJobNotFound
	}

	return taskFromHash(fields)
}

// Remove deletes a task from the queue regardless of its state. It returns
// ErrJobNotFound when no such task exists.
func (q *RedisTaskQueue) Remove(ctx context.Context, jobID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.remove")
	defer span.End()

	span.SetAttributes(attribute.String("job_id", jobID))

	keys := []string{
		jobKey(jobID),
		delayedZSetKey,
		waitingListKey,
		activeListKey,
		succeededListKey,
		failedListKey,
	}

	existed, err := q.client.Eval(ctx, removeScript, keys, jobID).Int64()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to remove task: %w", err)
	}
	if existed == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// TasksByState lists tasks currently in the given state, preserving the
// order they entered it.
func (q *RedisTaskQueue) TasksByState(ctx context.Context, state domain.TaskState) ([]*domain.ReminderTask, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.tasks_by_state")
	defer span.End()

	span.SetAttributes(attribute.String("state", string(state)))

	var ids []string
	var err error
	if state == domain.TaskStateDelayed {
		ids, err = q.client.ZRange(ctx, delayedZSetKey, 0, -1).Result()
	} else {
		ids, err = q.client.LRange(ctx, stateListKey(state), 0, -1).Result()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list %s tasks: %w", state, err)
	}

	tasks := make([]*domain.ReminderTask, 0, len(ids))
	for _, id := range ids {
		fields, err := q.client.HGetAll(ctx, jobKey(id)).Result()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to load task %s: %w", id, err)
		}
		if len(fields) == 0 {
			// Task hash already removed, skip the dangling id
			continue
		}
		task, err := taskFromHash(fields)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	span.SetAttributes(attribute.Int("count", len(tasks)))
	return tasks, nil
}

// ClaimDue moves up to batchSize due tasks into the active state and
// returns them for processing.
func (q *RedisTaskQueue) ClaimDue(ctx context.Context, now time.Time, batchSize int) ([]*domain.ReminderTask, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.claim_due")
	defer span.End()

	keys := []string{delayedZSetKey, activeListKey}
	args := []interface{}{now.Unix(), batchSize, jobKeyPrefix}

	raw, err := q.client.Eval(ctx, claimDueScript, keys, args...).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to claim due tasks: %w", err)
	}

	ids, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected claim result type %T", raw)
	}

	tasks := make([]*domain.ReminderTask, 0, len(ids))
	for _, rawID := range ids {
		id, ok := rawID.(string)
		if !ok {
			continue
		}
		fields, err := q.client.HGetAll(ctx, jobKey(id)).Result()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to load claimed task %s: %w", id, err)
		}
		if len(fields) == 0 {
			continue
		}
		task, err := taskFromHash(fields)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	span.SetAttributes(attribute.Int("claimed", len(tasks)))
	return tasks, nil
}

// MarkSucceeded settles an active task as succeeded
func (q *RedisTaskQueue) MarkSucceeded(ctx context.Context, jobID string) error {
	return q.settle(ctx, jobID, succeededListKey, domain.TaskStateSucceeded)
}

// MarkFailed settles an active task as failed
func (q *RedisTaskQueue) MarkFailed(ctx context.Context, jobID string) error {
	return q.settle(ctx, jobID, failedListKey, domain.TaskStateFailed)
}

func (q *RedisTaskQueue) settle(ctx context.Context, jobID, targetList string, state domain.TaskState) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.settle")
	defer span.End()

	span.SetAttributes(
		attribute.String("job_id", jobID),
		attribute.String("state", string(state)),
	)

	keys := []string{activeListKey, targetList, jobKey(jobID)}
	if err := q.client.Eval(ctx, settleScript, keys, jobID, string(state)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to settle task: %w", err)
	}

	return nil
}

func taskFromHash(fields map[string]string) (*domain.ReminderTask, error) {
	fireAt, err := strconv.ParseInt(fields["fire_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt fire_at on task %s: %w", fields["job_id"], err)
	}

	return &domain.ReminderTask{
		JobID:   fields["job_id"],
		EventID: fields["event_id"],
		Title:   fields["title"],
		FireAt:  time.Unix(fireAt, 0).UTC(),
		State:   domain.TaskState(fields["state"]),
	}, nil
}

var _ TaskQueue = (*RedisTaskQueue)(nil)
