package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingRequested BookingStatus = "requested"
	BookingAccepted  BookingStatus = "accepted"
	BookingDeclined  BookingStatus = "declined"
	BookingCompleted BookingStatus = "completed"
)

// bookingTransitions lists the states reachable from each non-terminal state.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingRequested: {BookingAccepted, BookingDeclined},
	BookingAccepted:  {BookingCompleted},
}

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingRequested, BookingAccepted, BookingDeclined, BookingCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s BookingStatus) Terminal() bool {
	return s == BookingDeclined || s == BookingCompleted
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is one customer-provider service engagement.
// Customer and provider names/contacts are snapshots taken at creation time.
type Booking struct {
	ID                  string        `bson:"id" json:"id" firestore:"id"`
	CustomerID          string        `bson:"customerId" json:"customerId" firestore:"customerId"`
	CustomerDisplayName string        `bson:"customerDisplayName" json:"customerDisplayName" firestore:"customerDisplayName"`
	CustomerContact     string        `bson:"customerContact" json:"customerContact" firestore:"customerContact"`
	ProviderID          string        `bson:"providerId" json:"providerId" firestore:"providerId"`
	ProviderDisplayName string        `bson:"providerDisplayName" json:"providerDisplayName" firestore:"providerDisplayName"`
	Service             string        `bson:"service" json:"service" firestore:"service"`
	ScheduledDate       string        `bson:"scheduledDate" json:"scheduledDate" firestore:"scheduledDate"` // YYYY-MM-DD
	ScheduledTime       string        `bson:"scheduledTime" json:"scheduledTime" firestore:"scheduledTime"` // HH:MM, 24h
	Address             string        `bson:"address" json:"address" firestore:"address"`
	Notes               string        `bson:"notes,omitempty" json:"notes,omitempty" firestore:"notes,omitempty"`
	Status              BookingStatus `bson:"status" json:"status" firestore:"status"`
	CustomerRating      *int          `bson:"customerRating,omitempty" json:"customerRating,omitempty" firestore:"customerRating,omitempty"`
	CreatedAt           time.Time     `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt           time.Time     `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
	RatedAt             *time.Time    `bson:"ratedAt,omitempty" json:"ratedAt,omitempty" firestore:"ratedAt,omitempty"`
}

// Rated reports whether the customer has already rated this booking.
func (b *Booking) Rated() bool {
	return b.CustomerRating != nil
}

// BookingRequest carries the fields a customer supplies when creating a booking.
type BookingRequest struct {
	Service       string `json:"service" binding:"required"`
	ProviderID    string `json:"providerId" binding:"required"`
	ScheduledDate string `json:"scheduledDate" binding:"required"`
	ScheduledTime string `json:"scheduledTime" binding:"required"`
	Address       string `json:"address" binding:"required"`
	Notes         string `json:"notes,omitempty"`
}

// BookingQuery selects bookings for listing and subscriptions.
// Empty fields do not constrain the result.
type BookingQuery struct {
	CustomerID string
	ProviderID string
	Statuses   []BookingStatus
	RatedOnly  bool
}

// Matches reports whether b satisfies the query.
func (q BookingQuery) Matches(b *Booking) bool {
	if q.CustomerID != "" && b.CustomerID != q.CustomerID {
		return false
	}
	if q.ProviderID != "" && b.ProviderID != q.ProviderID {
		return false
	}
	if q.RatedOnly && !b.Rated() {
		return false
	}
	if len(q.Statuses) == 0 {
		return true
	}
	for _, s := range q.Statuses {
		if b.Status == s {
			return true
		}
	}
	return false
}
