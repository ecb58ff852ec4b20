package models

import "time"

// BookingEventType names what happened to a booking.
type BookingEventType string

const (
	EventBookingRequested BookingEventType = "booking_requested"
	EventBookingAccepted  BookingEventType = "booking_accepted"
	EventBookingDeclined  BookingEventType = "booking_declined"
	EventBookingCompleted BookingEventType = "booking_completed"
	EventBookingRated     BookingEventType = "booking_rated"
)

// EventForStatus maps a booking status to the event emitted on entering it.
func EventForStatus(s BookingStatus) BookingEventType {
	switch s {
	case BookingAccepted:
		return EventBookingAccepted
	case BookingDeclined:
		return EventBookingDeclined
	case BookingCompleted:
		return EventBookingCompleted
	default:
		return EventBookingRequested
	}
}

// BookingEvent is the payload of a booking notification task.
type BookingEvent struct {
	Type       BookingEventType `json:"type"`
	BookingID  string           `json:"bookingId"`
	ActorID    string           `json:"actorId"`
	Rating     int              `json:"rating,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// Notification is a rendered message for one recipient.
type Notification struct {
	Recipient string            `json:"recipient"` // "customer" or "provider"
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data"`
}
