package memoryRepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"nestly/database"
	bookingRepo "nestly/database/repository/booking"
	"nestly/models"
)

var errReadAfterWrite = errors.New("transaction reads must precede writes")

// BookingRepo implements bookingRepo.BookingRepository on a Store.
type BookingRepo struct {
	s *Store
}

func (r *BookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	if _, exists := r.s.bookings[booking.ID]; exists {
		r.s.mu.Unlock()
		return fmt.Errorf("booking %s: %w", booking.ID, database.ErrConflict)
	}
	r.s.bookings[booking.ID] = copyBooking(*booking)
	r.s.mu.Unlock()
	r.s.notify()
	return nil
}

func (r *BookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	b = copyBooking(b)
	return &b, nil
}

func (r *BookingRepo) Find(_ context.Context, q models.BookingQuery) ([]models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Booking{}
	for _, b := range r.s.bookings {
		if q.Matches(&b) {
			out = append(out, copyBooking(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *BookingRepo) Watch(_ context.Context, q models.BookingQuery) (bookingRepo.Subscription, error) {
	ch := make(chan struct{}, 1)
	r.s.mu.Lock()
	id := r.s.nextWatcher
	r.s.nextWatcher++
	r.s.watchers[id] = ch
	r.s.mu.Unlock()
	return &subscription{repo: r, query: q, id: id, changed: ch, done: make(chan struct{})}, nil
}

type subscription struct {
	repo    *BookingRepo
	query   models.BookingQuery
	id      int
	changed chan struct{}
	done    chan struct{}
	primed  bool
	stopped bool
}

func (s *subscription) Next(ctx context.Context) ([]models.Booking, error) {
	if !s.primed {
		s.primed = true
		return s.repo.Find(ctx, s.query)
	}
	select {
	case <-s.changed:
		return s.repo.Find(ctx, s.query)
	case <-s.done:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *subscription) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.repo.s.mu.Lock()
	delete(s.repo.s.watchers, s.id)
	s.repo.s.mu.Unlock()
	close(s.done)
}

// RunTransaction serialises fn against every other transaction on the store
// and applies its writes only if fn succeeds and every precondition still holds.
func (r *BookingRepo) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx bookingRepo.Tx) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memoryTx{s: r.s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.commit(); err != nil {
		return err
	}
	if len(tx.writes) > 0 {
		r.s.notify()
	}
	return nil
}

type pendingWrite struct {
	check func() error
	apply func()
}

type memoryTx struct {
	s      *Store
	writes []pendingWrite
}

func (t *memoryTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, w := range t.writes {
		if err := w.check(); err != nil {
			return err
		}
	}
	for _, w := range t.writes {
		w.apply()
	}
	return nil
}

func (t *memoryTx) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	if len(t.writes) > 0 {
		return nil, errReadAfterWrite
	}
	return (&BookingRepo{s: t.s}).GetByID(ctx, id)
}

func (t *memoryTx) GetProvider(ctx context.Context, providerID string) (*models.ProviderProfile, error) {
	if len(t.writes) > 0 {
		return nil, errReadAfterWrite
	}
	return (&ProviderRepo{s: t.s}).GetByID(ctx, providerID)
}

func (t *memoryTx) UpdateBookingStatus(_ context.Context, prev *models.Booking, status models.BookingStatus, at time.Time) error {
	id, expected := prev.ID, prev.Status
	t.writes = append(t.writes, pendingWrite{
		check: func() error {
			b, ok := t.s.bookings[id]
			if !ok || b.Status != expected {
				return fmt.Errorf("booking status: %w", database.ErrConflict)
			}
			return nil
		},
		apply: func() {
			b := t.s.bookings[id]
			b.Status = status
			b.UpdatedAt = at
			t.s.bookings[id] = b
		},
	})
	return nil
}

func (t *memoryTx) SetCustomerRating(_ context.Context, prev *models.Booking, value int, at time.Time) error {
	id := prev.ID
	t.writes = append(t.writes, pendingWrite{
		check: func() error {
			b, ok := t.s.bookings[id]
			if !ok || b.Status != models.BookingCompleted || b.Rated() {
				return fmt.Errorf("customer rating: %w", database.ErrConflict)
			}
			return nil
		},
		apply: func() {
			b := t.s.bookings[id]
			v := value
			ratedAt := at
			b.CustomerRating = &v
			b.RatedAt = &ratedAt
			b.UpdatedAt = at
			t.s.bookings[id] = b
		},
	})
	return nil
}

func (t *memoryTx) SetProviderRating(_ context.Context, prev *models.ProviderProfile, agg models.RatingAggregate, at time.Time) error {
	id, expected := prev.ProviderID, prev.ReviewCount
	t.writes = append(t.writes, pendingWrite{
		check: func() error {
			p, ok := t.s.providers[id]
			if !ok || p.ReviewCount != expected {
				return fmt.Errorf("provider rating: %w", database.ErrConflict)
			}
			return nil
		},
		apply: func() {
			p := t.s.providers[id]
			p.Rating = agg.Rating
			p.ReviewCount = agg.ReviewCount
			p.RatingTotal = agg.RatingTotal
			p.UpdatedAt = at
			t.s.providers[id] = p
		},
	})
	return nil
}
