package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"example.com/backstage/services/events/internal/lifecycle"
	"example.com/backstage/services/events/internal/models"
)

// RegisterValidations registers custom binding validations with gin's
// validator engine. "eventstatus" restricts a field to the fixed status set,
// keeping unknown statuses out of the core at the boundary.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("eventstatus", func(fl validator.FieldLevel) bool {
			return lifecycle.ValidStatus(models.EventStatus(fl.Field().String()))
		})
	}
}
