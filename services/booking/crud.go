package booking

import (
	"context"
	"errors"
	"fmt"

	"nestly/database"
	"nestly/database/repository"
	"nestly/models"
)

// GetBooking returns a booking to its customer or provider.
func (s *DefaultBookingService) GetBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if actor.ID == "" || (b.CustomerID != actor.ID && b.ProviderID != actor.ID) {
		return nil, NewError(ErrPermissionDenied, "You are not part of this booking")
	}
	return b, nil
}

func (s *DefaultBookingService) ListForCustomer(ctx context.Context, actor models.Actor) ([]models.Booking, error) {
	if actor.ID == "" {
		return nil, ErrPermissionDenied
	}
	return s.BookingRepo.Find(ctx, models.BookingQuery{CustomerID: actor.ID})
}

func (s *DefaultBookingService) ListForProvider(ctx context.Context, actor models.Actor, statuses ...models.BookingStatus) ([]models.Booking, error) {
	if actor.ID == "" || actor.Role != models.RoleProvider {
		return nil, NewError(ErrPermissionDenied, "Only providers have a booking inbox")
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, NewError(ErrInvalidRequest, "Unknown booking status %q", st)
		}
	}
	return s.BookingRepo.Find(ctx, models.BookingQuery{ProviderID: actor.ID, Statuses: statuses})
}

// Subscribe streams the actor's bookings: the provider inbox for providers,
// the customer's own bookings otherwise. The caller must Stop it.
func (s *DefaultBookingService) Subscribe(ctx context.Context, actor models.Actor) (repository.Subscription, error) {
	if actor.ID == "" {
		return nil, ErrPermissionDenied
	}
	q := models.BookingQuery{CustomerID: actor.ID}
	if actor.Role == models.RoleProvider {
		q = models.BookingQuery{ProviderID: actor.ID}
	}
	return s.BookingRepo.Watch(ctx, q)
}
