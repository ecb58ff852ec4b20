package provider

import (
	"errors"
	"fmt"
)

// ProviderError is a user-actionable failure of a profile operation.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProviderError) Is(target error) bool {
	var t *ProviderError
	return errors.As(target, &t) && t.Code == e.Code
}

var (
	ErrProfileNotFound  = &ProviderError{Code: "not_found", Message: "Provider profile not found"}
	ErrNotProvider      = &ProviderError{Code: "permission_denied", Message: "Only approved providers can manage a profile"}
	ErrInvalidProfile   = &ProviderError{Code: "invalid_request", Message: "Invalid profile update"}
	ErrNothingToUpdate  = &ProviderError{Code: "invalid_request", Message: "No fields to update"}
	ErrInvalidServiceID = &ProviderError{Code: "invalid_service", Message: "Unknown service"}
)

func newError(base *ProviderError, format string, args ...interface{}) error {
	return &ProviderError{Code: base.Code, Message: fmt.Sprintf(format, args...)}
}
