package memoryRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"nestly/database"
	bookingRepo "nestly/database/repository/booking"
	"nestly/models"
)

var at = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

func TestCreateRejectsDuplicateID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	b := &models.Booking{ID: "b1", Status: models.BookingRequested}

	if err := s.Bookings().Create(ctx, b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Bookings().Create(ctx, b); !errors.Is(err, database.ErrConflict) {
		t.Fatalf("duplicate: got %v, want ErrConflict", err)
	}
}

func TestReturnedBookingsAreCopies(t *testing.T) {
	s := NewStore()
	five := 5
	s.SeedBooking(models.Booking{ID: "b1", CustomerRating: &five})

	got, _ := s.Bookings().GetByID(context.Background(), "b1")
	*got.CustomerRating = 1
	again, _ := s.Bookings().GetByID(context.Background(), "b1")
	if *again.CustomerRating != 5 {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestTransactionWritesAreAtomic(t *testing.T) {
	s := NewStore()
	s.SeedBooking(models.Booking{ID: "b1", ProviderID: "p1", Status: models.BookingCompleted})
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Bookings().RunTransaction(ctx, func(ctx context.Context, tx bookingRepo.Tx) error {
		b, err := tx.GetBooking(ctx, "b1")
		if err != nil {
			return err
		}
		if err := tx.SetCustomerRating(ctx, b, 4, at); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	b, _ := s.Bookings().GetByID(ctx, "b1")
	if b.Rated() {
		t.Fatal("write of a failed transaction was applied")
	}

	err = s.Bookings().RunTransaction(ctx, func(ctx context.Context, tx bookingRepo.Tx) error {
		b, err := tx.GetBooking(ctx, "b1")
		if err != nil {
			return err
		}
		if err := tx.SetCustomerRating(ctx, b, 4, at); err != nil {
			return err
		}
		_, err = tx.GetProvider(ctx, "p1")
		return err
	})
	if !errors.Is(err, errReadAfterWrite) {
		t.Fatalf("read after write: got %v", err)
	}
}

func TestConditionalWriteDetectsConflict(t *testing.T) {
	s := NewStore()
	s.SeedBooking(models.Booking{ID: "b1", Status: models.BookingRequested})
	ctx := context.Background()

	err := s.Bookings().RunTransaction(ctx, func(ctx context.Context, tx bookingRepo.Tx) error {
		b, err := tx.GetBooking(ctx, "b1")
		if err != nil {
			return err
		}
		// Another writer changes the status between read and commit.
		s.SeedBooking(models.Booking{ID: "b1", Status: models.BookingDeclined})
		return tx.UpdateBookingStatus(ctx, b, models.BookingAccepted, at)
	})
	if !errors.Is(err, database.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	b, _ := s.Bookings().GetByID(ctx, "b1")
	if b.Status != models.BookingDeclined {
		t.Fatalf("status = %s", b.Status)
	}
}

func TestQueuedWritesCheckValuesReadInTransaction(t *testing.T) {
	s := NewStore()
	s.SeedBooking(models.Booking{ID: "b1", Status: models.BookingRequested})
	s.SeedProvider(models.ProviderProfile{ProviderID: "p1", ReviewCount: 2})
	ctx := context.Background()

	err := s.Bookings().RunTransaction(ctx, func(ctx context.Context, tx bookingRepo.Tx) error {
		b, err := tx.GetBooking(ctx, "b1")
		if err != nil {
			return err
		}
		p, err := tx.GetProvider(ctx, "p1")
		if err != nil {
			return err
		}
		if err := tx.UpdateBookingStatus(ctx, b, models.BookingAccepted, at); err != nil {
			return err
		}
		if err := tx.SetProviderRating(ctx, p, models.RatingAggregate{Rating: 4, ReviewCount: 3, RatingTotal: 12}, at); err != nil {
			return err
		}
		// Callers may reuse the values they read once the writes are queued.
		b.Status = models.BookingAccepted
		p.ReviewCount = 3
		return nil
	})
	if err != nil {
		t.Fatalf("RunTransaction: %v", err)
	}
	b, _ := s.Bookings().GetByID(ctx, "b1")
	if b.Status != models.BookingAccepted {
		t.Errorf("status = %s, want accepted", b.Status)
	}
	p, _ := s.Providers().GetByID(ctx, "p1")
	if p.ReviewCount != 3 || p.Rating != 4 {
		t.Errorf("provider = %+v", p)
	}
}

func TestTransactionKeepsConcurrentProfileEdits(t *testing.T) {
	s := NewStore()
	s.SeedProvider(models.ProviderProfile{ProviderID: "p1", DisplayName: "Old"})
	ctx := context.Background()

	err := s.Bookings().RunTransaction(ctx, func(ctx context.Context, tx bookingRepo.Tx) error {
		p, err := tx.GetProvider(ctx, "p1")
		if err != nil {
			return err
		}
		name := "New"
		if _, err := s.Providers().UpdateFields(ctx, "p1", models.ProviderPatch{DisplayName: &name}); err != nil {
			return err
		}
		return tx.SetProviderRating(ctx, p, models.RatingAggregate{Rating: 5, ReviewCount: 1, RatingTotal: 5}, at)
	})
	if err != nil {
		t.Fatalf("RunTransaction: %v", err)
	}
	p, _ := s.Providers().GetByID(ctx, "p1")
	if p.DisplayName != "New" || p.ReviewCount != 1 {
		t.Fatalf("profile = %+v", p)
	}
}

func TestSubscriptionStop(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	sub, _ := s.Bookings().Watch(ctx, models.BookingQuery{CustomerID: "c1"})
	if _, err := sub.Next(ctx); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	sub.Stop()
	if _, err := sub.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Next after Stop: got %v", err)
	}
}

func TestApplicationUpdateReviewIsConditional(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Applications()
	repo.Save(ctx, &models.ProviderApplication{ID: "a1", Status: models.ApplicationRejected})

	_, err := repo.UpdateReview(ctx, "a1", []models.ApplicationStatus{models.ApplicationPending}, models.ApplicationReview{Status: models.ApplicationApproved, ReviewedAt: at})
	if !errors.Is(err, database.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	if _, err := repo.UpdateReview(ctx, "missing", nil, models.ApplicationReview{}); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("missing: got %v", err)
	}
}
