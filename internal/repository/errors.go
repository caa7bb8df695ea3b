package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Common repository errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusConflict = errors.New("event status does not match expected status")
	ErrCreateFailed   = errors.New("failed to create record")
	ErrUpdateFailed   = errors.New("failed to update record")
)

// IsRecordNotFoundError reports whether err is a gorm record-not-found error
func IsRecordNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
