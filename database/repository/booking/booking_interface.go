package bookingRepo

import (
	"context"
	"time"

	"nestly/models"
)

// BookingRepository persists bookings and arbitrates every guarded mutation
// through RunTransaction.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Find(ctx context.Context, q models.BookingQuery) ([]models.Booking, error)
	// Watch returns a restartable stream of result-set snapshots for q.
	Watch(ctx context.Context, q models.BookingQuery) (Subscription, error)
	// RunTransaction runs fn against a consistent snapshot. Writes made through
	// tx are committed together or not at all. fn may be invoked more than once
	// when the backend retries a conflicting transaction.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the read-then-conditional-write surface of a transaction.
// All reads must happen before the first write.
type Tx interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetProvider(ctx context.Context, providerID string) (*models.ProviderProfile, error)
	// UpdateBookingStatus moves prev to status if its stored status is still prev.Status.
	UpdateBookingStatus(ctx context.Context, prev *models.Booking, status models.BookingStatus, at time.Time) error
	// SetCustomerRating records the rating if the booking is still completed and unrated.
	SetCustomerRating(ctx context.Context, prev *models.Booking, value int, at time.Time) error
	// SetProviderRating stores agg if the provider's review count is still prev.ReviewCount.
	SetProviderRating(ctx context.Context, prev *models.ProviderProfile, agg models.RatingAggregate, at time.Time) error
}

// Subscription is an unbounded sequence of result-set snapshots.
// The first call to Next returns the current result set; later calls block
// until the result set may have changed. Stop must be called to release it,
// from the goroutine that calls Next; Stop is safe to call more than once.
type Subscription interface {
	Next(ctx context.Context) ([]models.Booking, error)
	Stop()
}
