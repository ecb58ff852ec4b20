package rating

import (
	"context"
	"errors"
	"time"

	"nestly/database"
	"nestly/database/repository"
	"nestly/models"
	"nestly/services/booking"

	"go.uber.org/zap"
)

// RatingService folds customer ratings into provider averages.
type RatingService interface {
	RateBooking(ctx context.Context, actor models.Actor, bookingID string, value int) (*RatingResult, error)
}

// RatingResult is the committed outcome of a rating.
type RatingResult struct {
	Booking  *models.Booking        `json:"booking"`
	Provider models.RatingAggregate `json:"provider"`
}

// DefaultRatingService implements RatingService.
type DefaultRatingService struct {
	BookingRepo repository.BookingRepository
	MatchingSvc booking.MatchingService
	Events      booking.EventPublisher
	Logger      *zap.Logger
	Now         func() time.Time
}

func (s *DefaultRatingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DefaultRatingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// RateBooking records value as the customer's rating of a completed booking
// and folds it into the provider's average. The booking and provider writes
// commit together; at most one rating per booking ever succeeds.
func (s *DefaultRatingService) RateBooking(ctx context.Context, actor models.Actor, bookingID string, value int) (*RatingResult, error) {
	if value < 1 || value > 5 {
		return nil, booking.ErrInvalidRating
	}

	var (
		result   *RatingResult
		services []string
	)
	err := booking.RunGuarded(ctx, s.BookingRepo, func(ctx context.Context, tx repository.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return booking.ErrNotFound
			}
			return err
		}
		if actor.ID == "" || b.CustomerID != actor.ID {
			return booking.NewError(booking.ErrPermissionDenied, "Only the booking's customer can rate it")
		}
		if b.Status != models.BookingCompleted {
			return booking.ErrInvalidState
		}
		if b.Rated() {
			return booking.ErrAlreadyRated
		}

		provider, err := tx.GetProvider(ctx, b.ProviderID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return booking.NewError(booking.ErrNotFound, "Provider not found")
			}
			return err
		}

		agg := Fold(provider.Aggregate(), value)
		now := s.now()
		if err := tx.SetProviderRating(ctx, provider, agg, now); err != nil {
			return err
		}
		if err := tx.SetCustomerRating(ctx, b, value, now); err != nil {
			return err
		}

		rated := value
		ratedAt := now
		stored := *b
		stored.CustomerRating = &rated
		stored.RatedAt = &ratedAt
		stored.UpdatedAt = now
		result = &RatingResult{Booking: &stored, Provider: agg}
		services = provider.Services
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Discovery ranks by rating, so cached rankings are stale now.
	if s.MatchingSvc != nil {
		s.MatchingSvc.Invalidate(ctx, services...)
	}
	s.logger().Info("Booking rated",
		zap.String("bookingId", bookingID),
		zap.String("providerId", result.Booking.ProviderID),
		zap.Int("rating", value),
		zap.Float64("providerRating", result.Provider.Rating),
		zap.Int("reviewCount", result.Provider.ReviewCount))
	booking.PublishEvent(ctx, s.Events, s.logger(), models.BookingEvent{
		Type:       models.EventBookingRated,
		BookingID:  bookingID,
		ActorID:    actor.ID,
		Rating:     value,
		OccurredAt: *result.Booking.RatedAt,
	})
	return result, nil
}
