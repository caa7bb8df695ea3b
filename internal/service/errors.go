package service

import (
	"errors"
	"fmt"

	"example.com/backstage/services/events/internal/models"
)

// Common service errors
var (
	// ErrEventNotFound means the referenced event does not exist
	ErrEventNotFound = errors.New("event not found")
	// ErrStatusConflict means the event's stored status no longer matches the
	// caller's expected status; the caller must re-read and decide again
	ErrStatusConflict = errors.New("event status changed concurrently")
)

// InvalidTransitionError means the requested status change is not in the
// allowed-edge set. Retrying the identical request will fail identically.
type InvalidTransitionError struct {
	From models.EventStatus
	To   models.EventStatus
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition from %s to %s is not allowed", e.From, e.To)
}

// TransientError wraps a storage-layer fault. The transition was rolled back,
// so retrying the identical call is safe.
type TransientError struct {
	Err error
}

// Error implements the error interface
func (e *TransientError) Error() string {
	return fmt.Sprintf("transient storage error: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *TransientError) Unwrap() error {
	return e.Err
}
