package models

import "time"

// BookingSession holds the booking wizard state between steps.
type BookingSession struct {
	SessionID     string            `json:"sessionId"`
	CustomerID    string            `json:"customerId"`
	Service       string            `json:"service"`
	Candidates    []ProviderSummary `json:"candidates"`
	ProviderID    string            `json:"providerId,omitempty"`
	ScheduledDate string            `json:"scheduledDate,omitempty"`
	ScheduledTime string            `json:"scheduledTime,omitempty"`
	Address       string            `json:"address,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// HasCandidate reports whether providerID was offered in the discovery step.
func (s *BookingSession) HasCandidate(providerID string) bool {
	for _, c := range s.Candidates {
		if c.ProviderID == providerID {
			return true
		}
	}
	return false
}

// Missing returns the name of the first wizard step that still lacks input, or "".
func (s *BookingSession) Missing() string {
	switch {
	case s.ProviderID == "":
		return "provider"
	case s.ScheduledDate == "" || s.ScheduledTime == "":
		return "schedule"
	case s.Address == "":
		return "address"
	}
	return ""
}

// Request converts a complete session into a booking request.
func (s *BookingSession) Request() BookingRequest {
	return BookingRequest{
		Service:       s.Service,
		ProviderID:    s.ProviderID,
		ScheduledDate: s.ScheduledDate,
		ScheduledTime: s.ScheduledTime,
		Address:       s.Address,
		Notes:         s.Notes,
	}
}
