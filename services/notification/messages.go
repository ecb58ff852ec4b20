package notification

import (
	"fmt"

	"nestly/models"
)

const (
	RecipientCustomer = "customer"
	RecipientProvider = "provider"
)

// BuildMessage renders the notification for the counterpart of the actor
// that caused the event. ok is false when nobody needs to be told.
func BuildMessage(event models.BookingEvent, b *models.Booking) (n models.Notification, ok bool) {
	service := serviceName(b.Service)
	when := b.ScheduledDate + " " + b.ScheduledTime
	data := map[string]string{
		"type":      string(event.Type),
		"bookingId": b.ID,
		"status":    string(b.Status),
	}

	switch event.Type {
	case models.EventBookingRequested:
		return models.Notification{
			Recipient: RecipientProvider,
			Title:     "New booking request",
			Body:      fmt.Sprintf("%s requested %s on %s.", b.CustomerDisplayName, service, when),
			Data:      data,
		}, true
	case models.EventBookingAccepted:
		return models.Notification{
			Recipient: RecipientCustomer,
			Title:     "Booking accepted",
			Body:      fmt.Sprintf("%s accepted your %s booking for %s.", b.ProviderDisplayName, service, when),
			Data:      data,
		}, true
	case models.EventBookingDeclined:
		return models.Notification{
			Recipient: RecipientCustomer,
			Title:     "Booking declined",
			Body:      fmt.Sprintf("%s can't take your %s booking for %s. Try another provider.", b.ProviderDisplayName, service, when),
			Data:      data,
		}, true
	case models.EventBookingCompleted:
		return models.Notification{
			Recipient: RecipientCustomer,
			Title:     "Job completed",
			Body:      fmt.Sprintf("%s marked your %s booking as completed.", b.ProviderDisplayName, service),
			Data:      data,
		}, true
	case models.EventBookingRated:
		data["rating"] = fmt.Sprint(event.Rating)
		return models.Notification{
			Recipient: RecipientProvider,
			Title:     "New rating",
			Body:      fmt.Sprintf("%s rated your %s job %d/5.", b.CustomerDisplayName, service, event.Rating),
			Data:      data,
		}, true
	}
	return models.Notification{}, false
}

// RatingReminder renders the nudge sent to a customer who has not rated yet.
func RatingReminder(b *models.Booking) models.Notification {
	return models.Notification{
		Recipient: RecipientCustomer,
		Title:     "How did it go?",
		Body:      fmt.Sprintf("Rate your %s job with %s in the app.", serviceName(b.Service), b.ProviderDisplayName),
		Data: map[string]string{
			"type":      "rating_reminder",
			"bookingId": b.ID,
		},
	}
}

func serviceName(id string) string {
	if svc, ok := models.LookupService(id); ok {
		return svc.Name
	}
	return id
}
