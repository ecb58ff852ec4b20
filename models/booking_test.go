package models

import "testing"

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingRequested, BookingAccepted, true},
		{BookingRequested, BookingDeclined, true},
		{BookingRequested, BookingCompleted, false},
		{BookingAccepted, BookingCompleted, true},
		{BookingAccepted, BookingDeclined, false},
		{BookingAccepted, BookingRequested, false},
		{BookingDeclined, BookingAccepted, false},
		{BookingDeclined, BookingCompleted, false},
		{BookingCompleted, BookingAccepted, false},
		{BookingCompleted, BookingDeclined, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
	if !BookingDeclined.Terminal() || !BookingCompleted.Terminal() || BookingAccepted.Terminal() {
		t.Error("terminal states are declined and completed only")
	}
	if BookingStatus("paid").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestBookingQueryMatches(t *testing.T) {
	five := 5
	b := &Booking{CustomerID: "c1", ProviderID: "p1", Status: BookingCompleted, CustomerRating: &five}

	tests := []struct {
		name string
		q    BookingQuery
		want bool
	}{
		{"empty", BookingQuery{}, true},
		{"customer", BookingQuery{CustomerID: "c1"}, true},
		{"other customer", BookingQuery{CustomerID: "c2"}, false},
		{"provider and status", BookingQuery{ProviderID: "p1", Statuses: []BookingStatus{BookingRequested, BookingCompleted}}, true},
		{"status mismatch", BookingQuery{ProviderID: "p1", Statuses: []BookingStatus{BookingRequested}}, false},
		{"rated only", BookingQuery{RatedOnly: true}, true},
	}
	for _, tt := range tests {
		if got := tt.q.Matches(b); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}

	b.CustomerRating = nil
	if (BookingQuery{RatedOnly: true}).Matches(b) {
		t.Error("unrated booking matched RatedOnly")
	}
}

func TestSessionMissing(t *testing.T) {
	s := &BookingSession{Candidates: []ProviderSummary{{ProviderID: "p1"}}}
	steps := []struct {
		apply func()
		want  string
	}{
		{func() {}, "provider"},
		{func() { s.ProviderID = "p1" }, "schedule"},
		{func() { s.ScheduledDate = "2026-01-02" }, "schedule"},
		{func() { s.ScheduledTime = "10:00" }, "address"},
		{func() { s.Address = "1 Main St" }, ""},
	}
	for i, step := range steps {
		step.apply()
		if got := s.Missing(); got != step.want {
			t.Errorf("step %d: Missing() = %q, want %q", i, got, step.want)
		}
	}
	if !s.HasCandidate("p1") || s.HasCandidate("p2") {
		t.Error("HasCandidate mismatch")
	}
}
