package errors

import "errors"

// ErrDateOutOfRange reports a date query spanning more than the allowed window.
var ErrDateOutOfRange = errors.New("date range exceeds the allowed window")

// ErrInvalidDate reports a date that is not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("date must use the YYYY-MM-DD format")
