package models

import "strings"

// Role is the marketplace role attached to an identity.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a claim value to a Role, defaulting to customer.
func ParseRole(v string) Role {
	switch Role(strings.ToLower(v)) {
	case RoleProvider:
		return RoleProvider
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleCustomer
	}
}

// Actor is the authenticated identity on whose behalf an operation runs.
type Actor struct {
	ID            string `json:"id"`
	Role          Role   `json:"role"`
	DisplayName   string `json:"displayName,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// Name returns the display name, falling back to the email address.
func (a Actor) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Email
}

// Contact returns the phone number when known, otherwise the email address.
func (a Actor) Contact() string {
	if a.Phone != "" {
		return a.Phone
	}
	return a.Email
}
