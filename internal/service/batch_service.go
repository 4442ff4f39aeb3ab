package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/internal/dto"
	"github.com/prohmpiriya/event-scheduler/internal/metrics"
	"github.com/prohmpiriya/event-scheduler/pkg/logger"
	"github.com/prohmpiriya/event-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Batch operation names used in aggregated error strings
const (
	batchOpCreate = "creating"
	batchOpUpdate = "updating"
	batchOpDelete = "deleting"
)

// BatchService fans event operations out over item lists. A failing item
// never aborts its siblings; its error joins the aggregated list instead.
type BatchService interface {
	// BatchCreate schedules every event in the list
	BatchCreate(ctx context.Context, events []dto.ScheduleEventRequest) *domain.BatchResult

	// BatchUpdate applies every partial update in the list
	BatchUpdate(ctx context.Context, items []dto.BatchUpdateItem) *domain.BatchResult

	// BatchDelete removes every listed event
	BatchDelete(ctx context.Context, ids []string) *domain.BatchResult

	// BatchOperations runs create, then update, then delete phases and
	// merges their results
	BatchOperations(ctx context.Context, req *dto.BatchRequest) *domain.BatchResult
}

// batchService implements BatchService
type batchService struct {
	events EventService
	log    *logger.Logger
}

// NewBatchService creates a new batch service
func NewBatchService(events EventService, log *logger.Logger) BatchService {
	if log == nil {
		log = logger.Get()
	}
	return &batchService{events: events, log: log}
}

// batchItemError formats one item failure for the aggregated error list
func batchItemError(operation, itemID string, err error) string {
	return fmt.Sprintf("Error %s for item with ID %s: %s", operation, itemID, err.Error())
}

// runItems dispatches fn for every item concurrently and collects outcomes
// in input order.
func (s *batchService) runItems(ctx context.Context, operation string, n int, itemID func(i int) string, fn func(ctx context.Context, i int) (interface{}, error)) *domain.BatchResult {
	outs := make([]interface{}, n)
	errs := make([]string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := fn(ctx, i)
			if err != nil {
				errs[i] = batchItemError(operation, itemID(i), err)
				metrics.RecordBatchItem(ctx, operation, false)
				s.log.Warn("batch item failed",
					zap.String("operation", operation),
					zap.String("item_id", itemID(i)),
					zap.Error(err),
				)
				return
			}
			outs[i] = out
			metrics.RecordBatchItem(ctx, operation, true)
		}(i)
	}
	wg.Wait()

	result := &domain.BatchResult{Status: domain.BatchStatusSuccess, Data: []interface{}{}}
	for i := 0; i < n; i++ {
		if errs[i] != "" {
			result.Errors = append(result.Errors, errs[i])
			continue
		}
		if outs[i] != nil {
			result.Data = append(result.Data, outs[i])
		}
	}
	if len(result.Errors) > 0 {
		result.Status = domain.BatchStatusPartialSuccess
	}
	return result
}

// BatchCreate schedules every event concurrently
func (s *batchService) BatchCreate(ctx context.Context, events []dto.ScheduleEventRequest) *domain.BatchResult {
	ctx, span := telemetry.StartSpan(ctx, "service.batch.create")
	defer span.End()

	span.SetAttributes(attribute.Int("items", len(events)))

	// Created items have no id yet; the list index identifies them
	return s.runItems(ctx, batchOpCreate, len(events),
		func(i int) string { return strconv.Itoa(i) },
		func(ctx context.Context, i int) (interface{}, error) {
			return s.events.ScheduleEvent(ctx, &events[i])
		},
	)
}

// BatchUpdate applies every partial update concurrently
func (s *batchService) BatchUpdate(ctx context.Context, items []dto.BatchUpdateItem) *domain.BatchResult {
	ctx, span := telemetry.StartSpan(ctx, "service.batch.update")
	defer span.End()

	span.SetAttributes(attribute.Int("items", len(items)))

	return s.runItems(ctx, batchOpUpdate, len(items),
		func(i int) string { return items[i].ID },
		func(ctx context.Context, i int) (interface{}, error) {
			return s.events.UpdateEvent(ctx, items[i].ID, &items[i].Data)
		},
	)
}

// BatchDelete removes every listed event concurrently
func (s *batchService) BatchDelete(ctx context.Context, ids []string) *domain.BatchResult {
	ctx, span := telemetry.StartSpan(ctx, "service.batch.delete")
	defer span.End()

	span.SetAttributes(attribute.Int("items", len(ids)))

	return s.runItems(ctx, batchOpDelete, len(ids),
		func(i int) string { return ids[i] },
		func(ctx context.Context, i int) (interface{}, error) {
			return s.events.DeleteEvent(ctx, ids[i])
		},
	)
}

// BatchOperations runs the three phases in order, each phase concurrent
func (s *batchService) BatchOperations(ctx context.Context, req *dto.BatchRequest) *domain.BatchResult {
	ctx, span := telemetry.StartSpan(ctx, "service.batch.operations")
	defer span.End()

	result := &domain.BatchResult{Status: domain.BatchStatusSuccess, Data: []interface{}{}}
	if req == nil {
		return result
	}

	if len(req.Create) > 0 {
		result.Merge(s.BatchCreate(ctx, req.Create))
	}
	if len(req.Update) > 0 {
		result.Merge(s.BatchUpdate(ctx, req.Update))
	}
	if len(req.DeleteIDs) > 0 {
		result.Merge(s.BatchDelete(ctx, req.DeleteIDs))
	}

	span.SetAttributes(
		attribute.Int("succeeded", len(result.Data)),
		attribute.Int("failed", len(result.Errors)),
	)
	return result
}
