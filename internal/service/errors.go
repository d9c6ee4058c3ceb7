package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Every *Error unwraps to exactly one of these so callers
// can branch with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("reservation conflict")
	ErrCarUnavailable = errors.New("car unavailable")
)

// Error is a classified failure of a reservation operation.  Message is
// safe to show to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func conflictError(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func notFoundError(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

const (
	msgDatesRequired   = "Start date and end date are required."
	msgEndBeforeStart  = "End date must be on or after the start date."
	msgLicenseRequired = "Member must provide a valid driving license number."
	msgCarUnavailable  = "Car is not available for the selected dates."
	msgNotModifiable   = "Reservation cannot be modified after pick-up date."
	msgAlreadyCanceled = "Reservation is already canceled."
	msgAlreadyComplete = "Reservation is already completed."
	msgNotActive       = "Only active reservations can be completed."
)
