package booking

import (
	"context"
	"time"

	"nestly/database/repository"
	"nestly/models"

	"go.uber.org/zap"
)

// MatchingService selects providers eligible for a booking request.
type MatchingService interface {
	// MatchProviders returns bookable providers offering service, best rated first.
	MatchProviders(ctx context.Context, service string) ([]models.ProviderProfile, error)
	// EligibleProvider re-checks one provider against the same rules.
	EligibleProvider(ctx context.Context, service, providerID string) (*models.ProviderProfile, error)
	// Invalidate drops cached discovery results for the given services.
	Invalidate(ctx context.Context, services ...string)
}

// BookingService owns the booking lifecycle.
type BookingService interface {
	CreateBooking(ctx context.Context, actor models.Actor, req models.BookingRequest) (*models.Booking, error)
	AcceptBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	DeclineBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)

	GetBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	ListForCustomer(ctx context.Context, actor models.Actor) ([]models.Booking, error)
	ListForProvider(ctx context.Context, actor models.Actor, statuses ...models.BookingStatus) ([]models.Booking, error)
	Subscribe(ctx context.Context, actor models.Actor) (repository.Subscription, error)
}

// BookingSessionService drives the multi-step booking wizard.
type BookingSessionService interface {
	InitiateSession(ctx context.Context, actor models.Actor, service string) (*models.BookingSession, error)
	SelectProvider(ctx context.Context, actor models.Actor, sessionID, providerID string) (*models.BookingSession, error)
	SetSchedule(ctx context.Context, actor models.Actor, sessionID, date, clock string) (*models.BookingSession, error)
	SetAddress(ctx context.Context, actor models.Actor, sessionID, address, notes string) (*models.BookingSession, error)
	ConfirmBooking(ctx context.Context, actor models.Actor, sessionID string) (*models.Booking, error)
	CancelSession(ctx context.Context, actor models.Actor, sessionID string) error
}

// EventPublisher hands booking events to the notification pipeline.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event models.BookingEvent) error
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	BookingRepo repository.BookingRepository
	MatchingSvc MatchingService
	Events      EventPublisher
	Logger      *zap.Logger
	Now         func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// publish hands an event to the notification pipeline. Failures are logged only.
func (s *DefaultBookingService) publish(ctx context.Context, event models.BookingEvent) {
	PublishEvent(ctx, s.Events, s.logger(), event)
}

// PublishEvent sends event through events when configured, logging failures.
func PublishEvent(ctx context.Context, events EventPublisher, logger *zap.Logger, event models.BookingEvent) {
	if events == nil {
		return
	}
	if err := events.PublishBookingEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish booking event",
			zap.String("type", string(event.Type)),
			zap.String("bookingId", event.BookingID),
			zap.Error(err))
	}
}
