package booking

import (
	"errors"
	"fmt"
)

// BookingError is a user-actionable failure of a booking or rating operation.
// Errors compare equal under errors.Is when their codes match.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Is(target error) bool {
	var t *BookingError
	return errors.As(target, &t) && t.Code == e.Code
}

var (
	ErrInvalidService      = &BookingError{Code: "invalid_service", Message: "Unknown service"}
	ErrNotFound            = &BookingError{Code: "not_found", Message: "Booking not found"}
	ErrPermissionDenied    = &BookingError{Code: "permission_denied", Message: "You are not allowed to change this booking"}
	ErrInvalidState        = &BookingError{Code: "invalid_state", Message: "You can only rate completed bookings"}
	ErrInvalidTransition   = &BookingError{Code: "invalid_transition", Message: "This booking can no longer be changed"}
	ErrAlreadyRated        = &BookingError{Code: "already_rated", Message: "Booking already rated"}
	ErrInvalidRating       = &BookingError{Code: "invalid_rating", Message: "Rating must be a whole number from 1 to 5"}
	ErrInvalidRequest      = &BookingError{Code: "invalid_request", Message: "Invalid booking request"}
	ErrProviderUnavailable = &BookingError{Code: "provider_unavailable", Message: "This provider is not accepting bookings right now"}
	ErrBusy                = &BookingError{Code: "busy", Message: "Too many updates at once, please try again in a moment"}
)

// NewError returns an error with the code of base and a specific message.
func NewError(base *BookingError, format string, args ...interface{}) error {
	return &BookingError{Code: base.Code, Message: fmt.Sprintf(format, args...)}
}
