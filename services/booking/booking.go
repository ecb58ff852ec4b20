package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nestly/database"
	"nestly/database/repository"
	"nestly/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// CreateBooking records a new booking in the requested state. The provider
// must pass the discovery rules at the moment of creation.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, actor models.Actor, req models.BookingRequest) (*models.Booking, error) {
	return s.createBooking(ctx, actor, uuid.New().String(), req)
}

func (s *DefaultBookingService) createBooking(ctx context.Context, actor models.Actor, id string, req models.BookingRequest) (*models.Booking, error) {
	if actor.ID == "" || actor.Role != models.RoleCustomer {
		return nil, NewError(ErrPermissionDenied, "Only customers can request bookings")
	}
	svc, err := ParseService(req.Service)
	if err != nil {
		return nil, err
	}
	if err := validateSchedule(req.ScheduledDate, req.ScheduledTime); err != nil {
		return nil, err
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, NewError(ErrInvalidRequest, "An address is required")
	}
	if req.ProviderID == "" {
		return nil, NewError(ErrInvalidRequest, "A provider must be chosen")
	}
	if req.ProviderID == actor.ID {
		return nil, NewError(ErrInvalidRequest, "You cannot book yourself")
	}

	provider, err := s.MatchingSvc.EligibleProvider(ctx, svc.ID, req.ProviderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	booking := &models.Booking{
		ID:                  id,
		CustomerID:          actor.ID,
		CustomerDisplayName: actor.Name(),
		CustomerContact:     actor.Contact(),
		ProviderID:          provider.ProviderID,
		ProviderDisplayName: provider.DisplayName,
		Service:             svc.ID,
		ScheduledDate:       req.ScheduledDate,
		ScheduledTime:       req.ScheduledTime,
		Address:             address,
		Notes:               strings.TrimSpace(req.Notes),
		Status:              models.BookingRequested,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.BookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger().Info("Booking requested",
		zap.String("bookingId", booking.ID),
		zap.String("customerId", booking.CustomerID),
		zap.String("providerId", booking.ProviderID),
		zap.String("service", booking.Service))
	s.publish(ctx, models.BookingEvent{
		Type:       models.EventBookingRequested,
		BookingID:  booking.ID,
		ActorID:    actor.ID,
		OccurredAt: now,
	})
	return booking, nil
}

func validateSchedule(date, clock string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return NewError(ErrInvalidRequest, "Date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse(timeLayout, clock); err != nil {
		return NewError(ErrInvalidRequest, "Time must be in HH:MM format")
	}
	return nil
}

func (s *DefaultBookingService) AcceptBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, actor, bookingID, models.BookingAccepted)
}

func (s *DefaultBookingService) DeclineBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, actor, bookingID, models.BookingDeclined)
}

func (s *DefaultBookingService) CompleteBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, actor, bookingID, models.BookingCompleted)
}

// transition moves a booking to next inside a transaction. The status read
// and the conditional write commit together, so two racing provider actions
// cannot both succeed.
func (s *DefaultBookingService) transition(ctx context.Context, actor models.Actor, bookingID string, next models.BookingStatus) (*models.Booking, error) {
	var updated *models.Booking
	err := RunGuarded(ctx, s.BookingRepo, func(ctx context.Context, tx repository.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if actor.ID == "" || b.ProviderID != actor.ID {
			return NewError(ErrPermissionDenied, "Only the booked provider can update this booking")
		}
		if !b.Status.CanTransitionTo(next) {
			return NewError(ErrInvalidTransition, "A %s booking cannot be marked %s", b.Status, next)
		}

		now := s.now()
		if err := tx.UpdateBookingStatus(ctx, b, next, now); err != nil {
			return err
		}
		moved := *b
		moved.Status = next
		moved.UpdatedAt = now
		updated = &moved
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger().Info("Booking status changed",
		zap.String("bookingId", updated.ID),
		zap.String("providerId", updated.ProviderID),
		zap.String("status", string(next)))
	s.publish(ctx, models.BookingEvent{
		Type:       models.EventForStatus(next),
		BookingID:  updated.ID,
		ActorID:    actor.ID,
		OccurredAt: updated.UpdatedAt,
	})
	return updated, nil
}
