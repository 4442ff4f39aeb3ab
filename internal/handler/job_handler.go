package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-scheduler/internal/service"
	"github.com/prohmpiriya/event-scheduler/pkg/response"
	"github.com/prohmpiriya/event-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// JobHandler handles reminder job HTTP requests
type JobHandler struct {
	reminderService service.ReminderService
}

// NewJobHandler creates a new job handler
func NewJobHandler(reminderService service.ReminderService) *JobHandler {
	return &JobHandler{reminderService: reminderService}
}

// GetJobs handles GET /jobs
func (h *JobHandler) GetJobs(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.job.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	tasks, err := h.reminderService.GetAllJobs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(tasks)))
	span.SetStatus(codes.Ok, "")
	response.OK(c, "jobs retrieved", tasks)
}

// GetJob handles GET /jobs/lookup?eventId=... or ?jobId=...
func (h *JobHandler) GetJob(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.job.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	key, value := service.LookupKeyEventID, c.Query("eventId")
	if value == "" {
		key, value = service.LookupKeyJobID, c.Query("jobId")
	}

	span.SetAttributes(
		attribute.String("key", key),
		attribute.String("value", value),
	)

	job, err := h.reminderService.GetReminderJob(ctx, key, value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, "job retrieved", job)
}

// DeleteJob handles DELETE /jobs/:jobId
func (h *JobHandler) DeleteJob(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.job.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	jobID := c.Param("jobId")
	span.SetAttributes(attribute.String("job_id", jobID))

	if err := h.reminderService.RemoveJob(ctx, jobID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.OK(c, "job removed", gin.H{"jobId": jobID})
}
