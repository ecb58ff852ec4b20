package identity

import (
	"errors"
	"fmt"
)

// IdentityError is a user-actionable authentication failure.
type IdentityError struct {
	Code    string
	Message string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *IdentityError) Is(target error) bool {
	var t *IdentityError
	return errors.As(target, &t) && t.Code == e.Code
}

var (
	ErrUnauthenticated    = &IdentityError{Code: "unauthenticated", Message: "Insufficient authorization"}
	ErrInvalidCredentials = &IdentityError{Code: "unauthenticated", Message: "Invalid email or password"}
	ErrEmailExists        = &IdentityError{Code: "conflict", Message: "An account with this email already exists"}
	ErrInvalidRequest     = &IdentityError{Code: "invalid_request", Message: "Invalid sign-up details"}
	ErrGoogleUnavailable  = &IdentityError{Code: "invalid_request", Message: "Google sign-in is not configured"}
)

func newError(base *IdentityError, format string, args ...interface{}) error {
	return &IdentityError{Code: base.Code, Message: fmt.Sprintf(format, args...)}
}
