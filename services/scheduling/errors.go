package scheduling

import (
	"errors"
	"fmt"
)

const (
	CodeTimeNotAvailable = "time_not_available"
	CodeCalendarError    = "calendar_error"
)

// BookingError distinguishes "slot taken" from "backend failure": the
// former should re-show availability, the latter should ask the user to
// retry later.
type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func NewTimeNotAvailableError(msg string) error {
	return &BookingError{Code: CodeTimeNotAvailable, Message: msg}
}

func NewCalendarError(msg string, err error) error {
	return &BookingError{Code: CodeCalendarError, Message: msg, Err: err}
}

// IsTimeNotAvailable reports whether err is a "slot taken" rejection.
func IsTimeNotAvailable(err error) bool {
	var be *BookingError
	return errors.As(err, &be) && be.Code == CodeTimeNotAvailable
}

// IsCalendarError reports whether err is a calendar backend failure.
func IsCalendarError(err error) bool {
	var be *BookingError
	return errors.As(err, &be) && be.Code == CodeCalendarError
}
