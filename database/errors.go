package database

import "errors"

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a conditional write no longer matches the stored document.
	ErrConflict = errors.New("document changed concurrently")
)

// Collection names shared by every store backend.
const (
	BookingsCollection     = "bookings"
	ProvidersCollection    = "providers"
	ApplicationsCollection = "applications"
)
