package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/events/internal/service"
)

// ErrorResponse defines the structure of an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondError maps service errors to HTTP responses. InvalidTransition and
// NotFound are deterministic and not retryable; transient storage faults get
// a 503 so clients know an identical retry is safe.
func respondError(c *gin.Context, err error) {
	var invalid *service.InvalidTransitionError
	var transient *service.TransientError

	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: invalid.Error(),
			Code:    "INVALID_TRANSITION",
		})
	case errors.Is(err, service.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Event not found",
			Code:    "NOT_FOUND",
		})
	case errors.Is(err, service.ErrStatusConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Event status changed concurrently, re-read and retry",
			Code:    "STATUS_CONFLICT",
		})
	case errors.As(err, &transient):
		log.Error().Err(err).Msg("Transient storage error")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Storage temporarily unavailable, retry the request",
			Code:    "STORAGE_UNAVAILABLE",
		})
	default:
		log.Error().Err(err).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Code:    "INTERNAL_ERROR",
		})
	}
}
