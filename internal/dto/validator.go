package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"student-qr/backend/internal/calendar"
	"student-qr/backend/internal/model"
)

// RegisterValidators adds the domain binding tags to gin's validator:
// `category` and `attendance_status`.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("category", validateCategory); err != nil {
		return err
	}
	return v.RegisterValidation("attendance_status", validateAttendanceStatus)
}

func validateCategory(fl validator.FieldLevel) bool {
	_, err := calendar.ParseCategory(fl.Field().String())
	return err == nil
}

func validateAttendanceStatus(fl validator.FieldLevel) bool {
	return model.ValidStatus(fl.Field().String())
}
