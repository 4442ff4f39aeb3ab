package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status values mirror the internal outcome taxonomy.
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partialSuccess"
	StatusError          = "error"
)

// Response is the envelope every endpoint returns
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// OK writes a 200 success envelope
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// Created writes a 201 success envelope
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// PartialSuccess writes a 207 multi-status envelope with the per-item errors
func PartialSuccess(c *gin.Context, message string, data interface{}, errs []string) {
	c.JSON(http.StatusMultiStatus, Response{
		Status:  StatusPartialSuccess,
		Message: message,
		Data:    data,
		Errors:  errs,
	})
}

// Error writes an error envelope with the given HTTP status
func Error(c *gin.Context, status int, message string, errs ...string) {
	c.JSON(status, Response{
		Status:  StatusError,
		Message: message,
		Errors:  errs,
	})
}

// BadRequest writes a 400 error envelope
func BadRequest(c *gin.Context, message string, errs ...string) {
	Error(c, http.StatusBadRequest, message, errs...)
}

// NotFound writes a 404 error envelope
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict writes a 409 error envelope
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError writes a 500 error envelope
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "internal server error")
}
