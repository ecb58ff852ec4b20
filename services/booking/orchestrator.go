package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nestly/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingSessionService implements BookingSessionService on top of a
// SessionStore. Sessions belong to the customer that opened them.
type DefaultBookingSessionService struct {
	Sessions      SessionStore
	MatchingSvc   MatchingService
	Bookings      *DefaultBookingService
	TTL           time.Duration
	SubmitTimeout time.Duration
	Logger        *zap.Logger
}

func (s *DefaultBookingSessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 30 * time.Minute
}

func (s *DefaultBookingSessionService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// InitiateSession runs discovery for service and opens a session holding the
// candidates. An empty candidate list is a valid session.
func (s *DefaultBookingSessionService) InitiateSession(ctx context.Context, actor models.Actor, service string) (*models.BookingSession, error) {
	if actor.ID == "" || actor.Role != models.RoleCustomer {
		return nil, NewError(ErrPermissionDenied, "Only customers can book services")
	}
	svc, err := ParseService(service)
	if err != nil {
		return nil, err
	}
	providers, err := s.MatchingSvc.MatchProviders(ctx, svc.ID)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.ProviderSummary, len(providers))
	for i := range providers {
		candidates[i] = providers[i].Summary()
	}
	now := s.Bookings.now()
	session := &models.BookingSession{
		SessionID:  uuid.New().String(),
		CustomerID: actor.ID,
		Service:    svc.ID,
		Candidates: candidates,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Sessions.Save(ctx, session, s.ttl()); err != nil {
		return nil, err
	}
	s.logger().Debug("Booking session initiated",
		zap.String("sessionId", session.SessionID),
		zap.String("service", svc.ID),
		zap.Int("candidates", len(candidates)))
	return session, nil
}

// load fetches the session and hides sessions owned by someone else.
func (s *DefaultBookingSessionService) load(ctx context.Context, actor models.Actor, sessionID string) (*models.BookingSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CustomerID != actor.ID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *DefaultBookingSessionService) update(ctx context.Context, actor models.Actor, sessionID string, mutate func(*models.BookingSession) error) (*models.BookingSession, error) {
	session, err := s.load(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if err := mutate(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.Bookings.now()
	if err := s.Sessions.Save(ctx, session, s.ttl()); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *DefaultBookingSessionService) SelectProvider(ctx context.Context, actor models.Actor, sessionID, providerID string) (*models.BookingSession, error) {
	return s.update(ctx, actor, sessionID, func(session *models.BookingSession) error {
		if !session.HasCandidate(providerID) {
			return NewError(ErrInvalidRequest, "Selected provider (%s) is not in the matched providers list", providerID)
		}
		session.ProviderID = providerID
		return nil
	})
}

func (s *DefaultBookingSessionService) SetSchedule(ctx context.Context, actor models.Actor, sessionID, date, clock string) (*models.BookingSession, error) {
	if err := validateSchedule(date, clock); err != nil {
		return nil, err
	}
	today := s.Bookings.now().Format(dateLayout)
	if date < today {
		return nil, NewError(ErrInvalidRequest, "The date %s is in the past", date)
	}
	return s.update(ctx, actor, sessionID, func(session *models.BookingSession) error {
		session.ScheduledDate = date
		session.ScheduledTime = clock
		return nil
	})
}

func (s *DefaultBookingSessionService) SetAddress(ctx context.Context, actor models.Actor, sessionID, address, notes string) (*models.BookingSession, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, NewError(ErrInvalidRequest, "An address is required")
	}
	return s.update(ctx, actor, sessionID, func(session *models.BookingSession) error {
		session.Address = address
		session.Notes = strings.TrimSpace(notes)
		return nil
	})
}

// ConfirmBooking submits the session as a booking within SubmitTimeout.
// The booking id is the session id, so a retried confirm after a timeout
// that nevertheless committed returns the stored booking instead of a duplicate.
func (s *DefaultBookingSessionService) ConfirmBooking(ctx context.Context, actor models.Actor, sessionID string) (*models.Booking, error) {
	session, err := s.load(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if missing := session.Missing(); missing != "" {
		return nil, NewError(ErrInvalidRequest, "Booking session is missing the %s step", missing)
	}

	// A retried confirm returns the booking the first attempt created, even
	// if the provider has since stopped taking bookings.
	existing, err := s.Bookings.GetBooking(ctx, actor, session.SessionID)
	switch {
	case err == nil:
		s.dropSession(ctx, sessionID)
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	submitCtx := ctx
	if s.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		submitCtx, cancel = context.WithTimeout(ctx, s.SubmitTimeout)
		defer cancel()
	}

	booking, err := s.Bookings.createBooking(submitCtx, actor, session.SessionID, session.Request())
	if err != nil {
		var bookingErr *BookingError
		if errors.As(err, &bookingErr) {
			return nil, err
		}
		if existing, getErr := s.Bookings.GetBooking(ctx, actor, session.SessionID); getErr == nil {
			booking = existing
		} else {
			if errors.Is(err, context.DeadlineExceeded) {
				s.logger().Warn("Booking submission timed out", zap.String("sessionId", sessionID))
			}
			return nil, fmt.Errorf("booking submission failed: %w", err)
		}
	}

	s.dropSession(ctx, sessionID)
	return booking, nil
}

func (s *DefaultBookingSessionService) dropSession(ctx context.Context, sessionID string) {
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		s.logger().Warn("Failed to delete booking session", zap.String("sessionId", sessionID), zap.Error(err))
	}
}

func (s *DefaultBookingSessionService) CancelSession(ctx context.Context, actor models.Actor, sessionID string) error {
	if _, err := s.load(ctx, actor, sessionID); err != nil {
		return err
	}
	return s.Sessions.Delete(ctx, sessionID)
}
