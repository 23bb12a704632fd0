package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/rodhonsys/saude-escolar-api/pkg/identity"
)

// RegisterValidations installs the custom binding rules referenced by
// the request structs. "fullname" rejects names that cannot anchor a
// person key before the request reaches the service layer.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return identity.ValidateFullName(fl.Field().String()) == nil
	})
}
