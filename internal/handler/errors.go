package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-scheduler/internal/domain"
	"github.com/prohmpiriya/event-scheduler/pkg/response"
)

// handleError converts domain errors to HTTP responses
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsConflictError(err):
		response.Conflict(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c)
	}
}
