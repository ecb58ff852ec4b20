package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nestly/models"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]models.BookingSession
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]models.BookingSession{}}
}

func (m *memorySessions) Save(_ context.Context, session *models.BookingSession, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = *session
	return nil
}

func (m *memorySessions) Get(_ context.Context, sessionID string) (*models.BookingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (m *memorySessions) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *memorySessions) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func newSessionService(f *fixture) (*DefaultBookingSessionService, *memorySessions) {
	sessions := newMemorySessions()
	return &DefaultBookingSessionService{
		Sessions:      sessions,
		MatchingSvc:   f.matching,
		Bookings:      f.bookings,
		SubmitTimeout: time.Second,
	}, sessions
}

func TestBookingWizard(t *testing.T) {
	f := newFixture(t,
		bookableProvider("A", 4.0, 10, "plumbing"),
		bookableProvider("B", 4.8, 4, "plumbing"),
	)
	svc, sessions := newSessionService(f)
	ctx := context.Background()

	session, err := svc.InitiateSession(ctx, customer, "Plumbing")
	if err != nil {
		t.Fatalf("InitiateSession: %v", err)
	}
	if session.Service != "plumbing" {
		t.Errorf("service = %q, want plumbing", session.Service)
	}
	if len(session.Candidates) != 2 || session.Candidates[0].ProviderID != "B" {
		t.Fatalf("candidates = %+v", session.Candidates)
	}

	if _, err := svc.ConfirmBooking(ctx, customer, session.SessionID); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("confirm before steps: got %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.SelectProvider(ctx, customer, session.SessionID, "Z"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("non-candidate: got %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.SelectProvider(ctx, customer, session.SessionID, "A"); err != nil {
		t.Fatalf("SelectProvider: %v", err)
	}
	if _, err := svc.SetSchedule(ctx, customer, session.SessionID, "2026-03-09", "09:00"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("past date: got %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.SetSchedule(ctx, customer, session.SessionID, "2026-03-10", "16:00"); err != nil {
		t.Fatalf("SetSchedule today: %v", err)
	}
	if _, err := svc.SetAddress(ctx, customer, session.SessionID, "", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("blank address: got %v, want ErrInvalidRequest", err)
	}
	updated, err := svc.SetAddress(ctx, customer, session.SessionID, " 4 Hill Road ", " gate code 1234 ")
	if err != nil {
		t.Fatalf("SetAddress: %v", err)
	}
	if updated.Address != "4 Hill Road" || updated.Notes != "gate code 1234" {
		t.Errorf("address/notes = %q/%q", updated.Address, updated.Notes)
	}

	booking, err := svc.ConfirmBooking(ctx, customer, session.SessionID)
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if booking.ID != session.SessionID {
		t.Errorf("booking id = %s, want session id %s", booking.ID, session.SessionID)
	}
	if booking.ProviderID != "A" || booking.ScheduledTime != "16:00" || booking.Status != models.BookingRequested {
		t.Errorf("booking = %+v", booking)
	}
	if sessions.len() != 0 {
		t.Error("session not deleted after confirm")
	}
	if _, err := svc.ConfirmBooking(ctx, customer, session.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second confirm: got %v, want ErrSessionNotFound", err)
	}
}

func TestInitiateSessionWithoutCandidates(t *testing.T) {
	f := newFixture(t)
	svc, _ := newSessionService(f)

	session, err := svc.InitiateSession(context.Background(), customer, "caregiving")
	if err != nil {
		t.Fatalf("InitiateSession: %v", err)
	}
	if len(session.Candidates) != 0 {
		t.Errorf("candidates = %+v, want none", session.Candidates)
	}
}

func TestInitiateSessionRejects(t *testing.T) {
	f := newFixture(t)
	svc, _ := newSessionService(f)
	ctx := context.Background()

	if _, err := svc.InitiateSession(ctx, providerActor("p"), "cleaning"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("provider: got %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.InitiateSession(ctx, customer, "pest control"); !errors.Is(err, ErrInvalidService) {
		t.Errorf("unknown service: got %v, want ErrInvalidService", err)
	}
}

func TestSessionsAreHiddenFromOtherCustomers(t *testing.T) {
	f := newFixture(t, bookableProvider("A", 4, 1, "cleaning"))
	svc, sessions := newSessionService(f)
	ctx := context.Background()

	session, err := svc.InitiateSession(ctx, customer, "cleaning")
	if err != nil {
		t.Fatalf("InitiateSession: %v", err)
	}
	if _, err := svc.SelectProvider(ctx, other, session.SessionID, "A"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("SelectProvider: got %v, want ErrSessionNotFound", err)
	}
	if err := svc.CancelSession(ctx, other, session.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("CancelSession: got %v, want ErrSessionNotFound", err)
	}
	if sessions.len() != 1 {
		t.Fatal("foreign cancel removed the session")
	}
	if err := svc.CancelSession(ctx, customer, session.SessionID); err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if sessions.len() != 0 {
		t.Error("session still present after cancel")
	}
}

func TestConfirmBookingRetryReturnsExistingBooking(t *testing.T) {
	f := newFixture(t, bookableProvider("A", 4, 1, "cleaning"))
	svc, _ := newSessionService(f)
	ctx := context.Background()

	session, _ := svc.InitiateSession(ctx, customer, "cleaning")
	if _, err := svc.SelectProvider(ctx, customer, session.SessionID, "A"); err != nil {
		t.Fatalf("SelectProvider: %v", err)
	}
	if _, err := svc.SetSchedule(ctx, customer, session.SessionID, "2026-03-11", "08:15"); err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	if _, err := svc.SetAddress(ctx, customer, session.SessionID, "9 Lake View", ""); err != nil {
		t.Fatalf("SetAddress: %v", err)
	}

	// A submission that committed while the caller saw a failure.
	stored, _ := svc.Sessions.Get(ctx, session.SessionID)
	first, err := f.bookings.createBooking(ctx, customer, session.SessionID, stored.Request())
	if err != nil {
		t.Fatalf("createBooking: %v", err)
	}

	again, err := svc.ConfirmBooking(ctx, customer, session.SessionID)
	if err != nil {
		t.Fatalf("ConfirmBooking retry: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("retry returned %s, want %s", again.ID, first.ID)
	}
	all, _ := f.store.Bookings.Find(ctx, models.BookingQuery{CustomerID: customer.ID})
	if len(all) != 1 {
		t.Errorf("%d bookings stored, want 1", len(all))
	}
}

func TestConfirmBookingRechecksProvider(t *testing.T) {
	f := newFixture(t, bookableProvider("A", 4, 1, "cleaning"))
	svc, sessions := newSessionService(f)
	ctx := context.Background()

	session, _ := svc.InitiateSession(ctx, customer, "cleaning")
	svc.SelectProvider(ctx, customer, session.SessionID, "A")
	svc.SetSchedule(ctx, customer, session.SessionID, "2026-03-11", "08:15")
	svc.SetAddress(ctx, customer, session.SessionID, "9 Lake View", "")

	off := false
	if _, err := f.store.Providers.UpdateFields(ctx, "A", models.ProviderPatch{AcceptingBookings: &off}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if _, err := svc.ConfirmBooking(ctx, customer, session.SessionID); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("got %v, want ErrProviderUnavailable", err)
	}
	if sessions.len() != 1 {
		t.Error("session must survive a failed confirm")
	}
}

func TestConfirmBookingRetryAfterProviderWentOffline(t *testing.T) {
	f := newFixture(t, bookableProvider("A", 4, 1, "cleaning"))
	svc, sessions := newSessionService(f)
	ctx := context.Background()

	session, _ := svc.InitiateSession(ctx, customer, "cleaning")
	svc.SelectProvider(ctx, customer, session.SessionID, "A")
	svc.SetSchedule(ctx, customer, session.SessionID, "2026-03-11", "08:15")
	svc.SetAddress(ctx, customer, session.SessionID, "9 Lake View", "")

	stored, _ := svc.Sessions.Get(ctx, session.SessionID)
	first, err := f.bookings.createBooking(ctx, customer, session.SessionID, stored.Request())
	if err != nil {
		t.Fatalf("createBooking: %v", err)
	}
	offline := false
	if _, err := f.store.Providers.UpdateFields(ctx, "A", models.ProviderPatch{IsOnline: &offline}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	again, err := svc.ConfirmBooking(ctx, customer, session.SessionID)
	if err != nil {
		t.Fatalf("ConfirmBooking retry: %v", err)
	}
	if again.ID != first.ID || again.Status != models.BookingRequested {
		t.Errorf("retry returned %+v, want booking %s", again, first.ID)
	}
	if sessions.len() != 0 {
		t.Error("session kept after the retry found its booking")
	}
}
