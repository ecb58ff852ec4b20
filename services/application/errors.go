package application

import (
	"errors"
	"fmt"
)

// ApplicationError is a user-actionable failure of an onboarding operation.
type ApplicationError struct {
	Code    string
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ApplicationError) Is(target error) bool {
	var t *ApplicationError
	return errors.As(target, &t) && t.Code == e.Code
}

var (
	ErrNotFound         = &ApplicationError{Code: "not_found", Message: "Application not found"}
	ErrPermissionDenied = &ApplicationError{Code: "permission_denied", Message: "Only providers can apply"}
	ErrInvalidRequest   = &ApplicationError{Code: "invalid_request", Message: "Invalid application"}
	ErrInvalidService   = &ApplicationError{Code: "invalid_service", Message: "Unknown service"}
	ErrAlreadyApproved  = &ApplicationError{Code: "invalid_state", Message: "Application already approved"}
	ErrNotReviewable    = &ApplicationError{Code: "invalid_state", Message: "Application is not awaiting review"}
	ErrFileTooLarge     = &ApplicationError{Code: "invalid_request", Message: "File exceeds the 10MB limit"}
	ErrUnsupportedType  = &ApplicationError{Code: "invalid_request", Message: "Only PDF, JPEG and PNG files are accepted"}
)

func newError(base *ApplicationError, format string, args ...interface{}) error {
	return &ApplicationError{Code: base.Code, Message: fmt.Sprintf(format, args...)}
}
