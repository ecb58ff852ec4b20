package notification

import (
	"context"
	"errors"
	"fmt"

	"nestly/database"
	"nestly/models"
	"nestly/services/tasks"
	"nestly/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// HandleBookingEvent processes a booking:event task.
func (d *Dispatcher) HandleBookingEvent(ctx context.Context, task *asynq.Task) error {
	event, err := tasks.ParseBookingEvent(task)
	if err != nil {
		return fmt.Errorf("invalid booking event payload: %v: %w", err, asynq.SkipRetry)
	}
	b, err := d.loadBooking(ctx, event.BookingID)
	if err != nil {
		return err
	}
	n, ok := BuildMessage(event, b)
	if !ok {
		d.logger().Warn("No notification for booking event", zap.String("type", string(event.Type)))
		return nil
	}
	return d.deliver(ctx, b, n)
}

// HandleRatingReminder processes a booking:rating_reminder task. It does
// nothing once the booking has been rated.
func (d *Dispatcher) HandleRatingReminder(ctx context.Context, task *asynq.Task) error {
	p, err := tasks.ParseRatingReminder(task)
	if err != nil {
		return fmt.Errorf("invalid rating reminder payload: %v: %w", err, asynq.SkipRetry)
	}
	b, err := d.loadBooking(ctx, p.BookingID)
	if err != nil {
		return err
	}
	if b.Rated() || b.Status != models.BookingCompleted {
		return nil
	}
	return d.deliver(ctx, b, RatingReminder(b))
}

func (d *Dispatcher) loadBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := d.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("booking %s not found: %w", id, asynq.SkipRetry)
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", id, err)
	}
	return b, nil
}

func (d *Dispatcher) deliver(ctx context.Context, b *models.Booking, n models.Notification) error {
	log := d.logger().With(
		zap.String("bookingId", b.ID),
		zap.String("recipient", n.Recipient),
		zap.String("type", n.Data["type"]))

	switch n.Recipient {
	case RecipientProvider:
		if d.Push == nil {
			return nil
		}
		profile, err := d.Providers.GetByID(ctx, b.ProviderID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load provider %s: %w", b.ProviderID, err)
		}
		if profile.DeviceToken == "" {
			log.Debug("Provider has no device token, skipping push")
			return nil
		}
		if err := d.Push.SendPush(ctx, profile.DeviceToken, n); err != nil {
			log.Warn("Push delivery failed", zap.Error(err))
			return err
		}
	case RecipientCustomer:
		if d.SMS == nil || !utils.IsE164(b.CustomerContact) {
			log.Debug("Customer contact is not a phone number, skipping SMS")
			return nil
		}
		if err := d.SMS.SendSMS(ctx, b.CustomerContact, n.Title+": "+n.Body); err != nil {
			log.Warn("SMS delivery failed", zap.Error(err))
			return err
		}
	}
	log.Info("Notification delivered")
	return nil
}
