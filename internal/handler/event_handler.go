package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/internal/dto"
	"github.com/prohmpiriya/event-scheduler/internal/service"
	"github.com/prohmpiriya/event-scheduler/pkg/response"
	"github.com/prohmpiriya/event-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventHandler handles event HTTP requests
type EventHandler struct {
	eventService service.EventService
	batchService service.BatchService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService, batchService service.BatchService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		batchService: batchService,
	}
}

// ScheduleEvent handles POST /events
func (h *EventHandler) ScheduleEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.schedule")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.ScheduleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("venue", req.Venue),
		attribute.String("title", req.Title),
	)

	event, err := h.eventService.ScheduleEvent(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, "event scheduled", event)
}

// GetEvents handles GET /events
func (h *EventHandler) GetEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	filter := domain.EventFilter{
		Venue:    c.Query("venue"),
		Location: c.Query("location"),
		SortBy:   domain.SortKey(c.Query("sortBy")),
	}

	span.SetAttributes(
		attribute.String("venue", filter.Venue),
		attribute.String("location", filter.Location),
		attribute.String("sort_by", string(filter.SortBy)),
	)

	events, err := h.eventService.GetEvents(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	response.OK(c, "events retrieved", events)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("event_id", id))

	event, err := h.eventService.GetEventByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, "event retrieved", event)
}

// UpdateEvent handles PUT /events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("event_id", id))

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	event, err := h.eventService.UpdateEvent(ctx, id, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, "event updated", event)
}

// DeleteEvent handles DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("event_id", id))

	event, err := h.eventService.DeleteEvent(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, "event deleted", event)
}

// DeleteAllEvents handles DELETE /events
func (h *EventHandler) DeleteAllEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.delete_all")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	count, err := h.eventService.DeleteAllEvents(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("count", count))
	span.SetStatus(codes.Ok, "")
	response.OK(c, "all events deleted", gin.H{"deleted": count})
}

// BatchOperations handles POST /events/batch
func (h *EventHandler) BatchOperations(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.batch")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.Int("create_items", len(req.Create)),
		attribute.Int("update_items", len(req.Update)),
		attribute.Int("delete_items", len(req.DeleteIDs)),
	)

	result := h.batchService.BatchOperations(ctx, &req)

	span.SetAttributes(
		attribute.Int("succeeded", len(result.Data)),
		attribute.Int("failed", len(result.Errors)),
	)
	span.SetStatus(codes.Ok, "")

	if result.Status == domain.BatchStatusPartialSuccess {
		response.PartialSuccess(c, "some operations completed with errors", result.Data, result.Errors)
		return
	}
	response.OK(c, "batch completed", result.Data)
}
