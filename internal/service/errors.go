package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Business-rule violations reported to callers with a specific message.
var (
	ErrHoliday            = errors.New("classes cannot be booked on a holiday")
	ErrBookingWindow      = errors.New("classes must be booked at least 30 minutes in advance")
	ErrCancelWindow       = errors.New("bookings must be cancelled at least 2 hours in advance")
	ErrForbidden          = errors.New("not allowed")
	ErrNotRosterStudent   = errors.New("email is not on the student roster")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidStatus      = errors.New("invalid booking status")
	ErrRosterDisabled     = errors.New("roster sync is not configured")
)

var validate = validator.New()

// ValidationError reports malformed input.
type ValidationError struct {
	Fields map[string]string
	msg    string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func invalid(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// validateStruct runs the struct's validate tags and converts failures into a
// ValidationError naming each offending field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalid("invalid input: %v", err)
	}
	fields := make(map[string]string, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
		names = append(names, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return &ValidationError{
		Fields: fields,
		msg:    "invalid input: " + strings.Join(names, ", "),
	}
}
