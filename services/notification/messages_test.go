package notification

import (
	"strings"
	"testing"

	"nestly/models"
)

func sampleBooking() *models.Booking {
	return &models.Booking{
		ID:                  "bk-1",
		CustomerID:          "c1",
		CustomerDisplayName: "Amina",
		CustomerContact:     "+254700000001",
		ProviderID:          "p1",
		ProviderDisplayName: "Baraka",
		Service:             "outdoor-care",
		ScheduledDate:       "2026-06-01",
		ScheduledTime:       "09:30",
		Status:              models.BookingAccepted,
	}
}

func TestBuildMessageRecipients(t *testing.T) {
	tests := []struct {
		event     models.BookingEventType
		recipient string
		contains  string
	}{
		{models.EventBookingRequested, RecipientProvider, "Amina requested Outdoor Care on 2026-06-01 09:30"},
		{models.EventBookingAccepted, RecipientCustomer, "Baraka accepted"},
		{models.EventBookingDeclined, RecipientCustomer, "Try another provider"},
		{models.EventBookingCompleted, RecipientCustomer, "completed"},
		{models.EventBookingRated, RecipientProvider, "4/5"},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			n, ok := BuildMessage(models.BookingEvent{Type: tt.event, BookingID: "bk-1", Rating: 4}, sampleBooking())
			if !ok {
				t.Fatal("no message built")
			}
			if n.Recipient != tt.recipient {
				t.Errorf("recipient = %s, want %s", n.Recipient, tt.recipient)
			}
			if !strings.Contains(n.Body, tt.contains) {
				t.Errorf("body %q does not contain %q", n.Body, tt.contains)
			}
			if n.Data["bookingId"] != "bk-1" || n.Data["type"] != string(tt.event) {
				t.Errorf("data = %v", n.Data)
			}
		})
	}
}

func TestBuildMessageUnknownEvent(t *testing.T) {
	if _, ok := BuildMessage(models.BookingEvent{Type: "booking_paid"}, sampleBooking()); ok {
		t.Fatal("unexpected message for unknown event")
	}
}

func TestRatingReminder(t *testing.T) {
	n := RatingReminder(sampleBooking())
	if n.Recipient != RecipientCustomer || !strings.Contains(n.Body, "Outdoor Care job with Baraka") {
		t.Fatalf("reminder = %+v", n)
	}
}
