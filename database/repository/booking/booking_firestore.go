package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nestly/database"
	"nestly/models"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// FirestoreBookingRepo implements BookingRepository on Cloud Firestore.
// Bookings and provider profiles are keyed by their ids.
type FirestoreBookingRepo struct {
	client    *firestore.Client
	bookings  *firestore.CollectionRef
	providers *firestore.CollectionRef
}

// NewFirestoreBookingRepo constructs a FirestoreBookingRepo.
func NewFirestoreBookingRepo(client *firestore.Client) *FirestoreBookingRepo {
	return &FirestoreBookingRepo{
		client:    client,
		bookings:  client.Collection(database.BookingsCollection),
		providers: client.Collection(database.ProvidersCollection),
	}
}

func (r *FirestoreBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.bookings.Doc(booking.ID).Create(ctx, booking); err != nil {
		if mapped := database.FirestoreError(err); errors.Is(mapped, database.ErrConflict) {
			return fmt.Errorf("booking %s: %w", booking.ID, database.ErrConflict)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *FirestoreBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snap, err := r.bookings.Doc(id).Get(ctx)
	return decodeBooking(snap, err, id)
}

func decodeBooking(snap *firestore.DocumentSnapshot, err error, id string) (*models.Booking, error) {
	if err != nil {
		if database.IsFirestoreNotFound(err) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	var booking models.Booking
	if err := snap.DataTo(&booking); err != nil {
		return nil, fmt.Errorf("error decoding booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *FirestoreBookingRepo) query(q models.BookingQuery) firestore.Query {
	query := r.bookings.Query
	if q.CustomerID != "" {
		query = query.Where("customerId", "==", q.CustomerID)
	}
	if q.ProviderID != "" {
		query = query.Where("providerId", "==", q.ProviderID)
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status", "in", statuses)
	}
	return query
}

func (r *FirestoreBookingRepo) Find(ctx context.Context, q models.BookingQuery) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	docs, err := r.query(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	return decodeBookings(docs, q)
}

// decodeBookings converts query results, applying the parts of q that
// Firestore cannot express, and orders them newest first.
func decodeBookings(docs []*firestore.DocumentSnapshot, q models.BookingQuery) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0, len(docs))
	for _, doc := range docs {
		var b models.Booking
		if err := doc.DataTo(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking %s: %w", doc.Ref.ID, err)
		}
		if q.Matches(&b) {
			bookings = append(bookings, b)
		}
	}
	sortNewestFirst(bookings)
	return bookings, nil
}

// RunTransaction uses Firestore's optimistic transactions, which retry fn
// when a document read inside it changes before commit.
func (r *FirestoreBookingRepo) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{repo: r, t: t})
	})
	if err != nil && !errors.Is(err, database.ErrNotFound) && !errors.Is(err, database.ErrConflict) {
		return database.FirestoreError(err)
	}
	return err
}

type firestoreTx struct {
	repo *FirestoreBookingRepo
	t    *firestore.Transaction
}

func (t *firestoreTx) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	snap, err := t.t.Get(t.repo.bookings.Doc(id))
	return decodeBooking(snap, err, id)
}

func (t *firestoreTx) GetProvider(_ context.Context, providerID string) (*models.ProviderProfile, error) {
	snap, err := t.t.Get(t.repo.providers.Doc(providerID))
	if err != nil {
		if database.IsFirestoreNotFound(err) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching provider %s: %w", providerID, err)
	}
	var profile models.ProviderProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("error decoding provider %s: %w", providerID, err)
	}
	return &profile, nil
}

// Writes below rely on the transaction's read set for their preconditions:
// a concurrent commit to a document read earlier aborts and retries fn.

func (t *firestoreTx) UpdateBookingStatus(_ context.Context, prev *models.Booking, status models.BookingStatus, at time.Time) error {
	return t.t.Update(t.repo.bookings.Doc(prev.ID), []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: at},
	})
}

func (t *firestoreTx) SetCustomerRating(_ context.Context, prev *models.Booking, value int, at time.Time) error {
	if prev.Status != models.BookingCompleted || prev.Rated() {
		return fmt.Errorf("customer rating: %w", database.ErrConflict)
	}
	return t.t.Update(t.repo.bookings.Doc(prev.ID), []firestore.Update{
		{Path: "customerRating", Value: value},
		{Path: "ratedAt", Value: at},
		{Path: "updatedAt", Value: at},
	})
}

func (t *firestoreTx) SetProviderRating(_ context.Context, prev *models.ProviderProfile, agg models.RatingAggregate, at time.Time) error {
	return t.t.Update(t.repo.providers.Doc(prev.ProviderID), []firestore.Update{
		{Path: "rating", Value: agg.Rating},
		{Path: "reviewCount", Value: agg.ReviewCount},
		{Path: "ratingTotal", Value: agg.RatingTotal},
		{Path: "updatedAt", Value: at},
	})
}

// Watch wraps a realtime query listener.
func (r *FirestoreBookingRepo) Watch(ctx context.Context, q models.BookingQuery) (Subscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	return &firestoreSubscription{repo: r, query: q, ctx: watchCtx, cancel: cancel}, nil
}

type firestoreSubscription struct {
	repo   *FirestoreBookingRepo
	query  models.BookingQuery
	ctx    context.Context
	cancel context.CancelFunc
	it     *firestore.QuerySnapshotIterator
}

func (s *firestoreSubscription) Next(ctx context.Context) ([]models.Booking, error) {
	for attempt := 0; ; attempt++ {
		if s.it == nil {
			s.it = s.repo.query(s.query).Snapshots(s.ctx)
		}
		it := s.it
		snap, err := it.Next()
		if err == nil {
			docs, err := snap.Documents.GetAll()
			if err != nil {
				return nil, fmt.Errorf("error reading booking snapshot: %w", err)
			}
			return decodeBookings(docs, s.query)
		}

		it.Stop()
		s.it = nil
		if errors.Is(err, iterator.Done) || s.ctx.Err() != nil || ctx.Err() != nil {
			return nil, context.Canceled
		}
		if attempt >= maxStreamReopen {
			return nil, fmt.Errorf("booking listener failed: %w", err)
		}
		zap.L().Warn("Restarting booking listener", zap.Error(err), zap.Int("attempt", attempt+1))
	}
}

func (s *firestoreSubscription) Stop() {
	s.cancel()
	if s.it != nil {
		s.it.Stop()
		s.it = nil
	}
}
