package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"student-qr/backend/internal/calendar"
	pkgerrors "student-qr/backend/pkg/errors"
	"student-qr/backend/pkg/response"
)

// writeInputError answers the input errors shared by several modules.
// It reports false when err is none of them.
func writeInputError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidDate):
		response.BadRequest(c, 10006, "date must use the YYYY-MM-DD format")
	case errors.Is(err, pkgerrors.ErrDateOutOfRange):
		response.BadRequest(c, 10007, "date range is too long")
	case errors.Is(err, calendar.ErrInvalidDateRange):
		response.BadRequest(c, 10008, "end date must not be before start date")
	case errors.Is(err, calendar.ErrUnknownCategory):
		response.BadRequest(c, 14002, "unknown calendar category")
	default:
		return false
	}
	return true
}
