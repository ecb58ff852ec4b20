package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"nestly/models"
)

func TestCreateBooking(t *testing.T) {
	f := newFixture(t, bookableProvider("prov-1", 4.5, 3, "cleaning"))
	ctx := context.Background()

	b, err := f.bookings.CreateBooking(ctx, customer, validRequest("prov-1"))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.Status != models.BookingRequested {
		t.Errorf("status = %s, want requested", b.Status)
	}
	if b.CustomerDisplayName != "Amina" || b.CustomerContact != "+254700000001" {
		t.Errorf("customer snapshot = %q/%q", b.CustomerDisplayName, b.CustomerContact)
	}
	if b.ProviderDisplayName != "Provider prov-1" {
		t.Errorf("provider snapshot = %q", b.ProviderDisplayName)
	}
	if b.Rated() {
		t.Error("new booking must not be rated")
	}
	if !b.CreatedAt.Equal(testNow) {
		t.Errorf("createdAt = %v, want %v", b.CreatedAt, testNow)
	}

	stored, err := f.store.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != models.BookingRequested {
		t.Errorf("stored status = %s", stored.Status)
	}
	if got := f.events.types(); len(got) != 1 || got[0] != models.EventBookingRequested {
		t.Errorf("events = %v", got)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	unavailable := bookableProvider("paused", 4, 1, "cleaning")
	unavailable.AcceptingBookings = false
	f := newFixture(t, bookableProvider("prov-1", 4, 1, "cleaning"), unavailable)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor models.Actor
		req   func() models.BookingRequest
		want  error
	}{
		{"provider cannot book", providerActor("prov-9"), func() models.BookingRequest { return validRequest("prov-1") }, ErrPermissionDenied},
		{"anonymous", models.Actor{}, func() models.BookingRequest { return validRequest("prov-1") }, ErrPermissionDenied},
		{"unknown service", customer, func() models.BookingRequest {
			r := validRequest("prov-1")
			r.Service = "gardening gnomes"
			return r
		}, ErrInvalidService},
		{"bad date", customer, func() models.BookingRequest {
			r := validRequest("prov-1")
			r.ScheduledDate = "12/03/2026"
			return r
		}, ErrInvalidRequest},
		{"bad time", customer, func() models.BookingRequest {
			r := validRequest("prov-1")
			r.ScheduledTime = "25:00"
			return r
		}, ErrInvalidRequest},
		{"blank address", customer, func() models.BookingRequest {
			r := validRequest("prov-1")
			r.Address = "   "
			return r
		}, ErrInvalidRequest},
		{"missing provider", customer, func() models.BookingRequest { return validRequest("") }, ErrInvalidRequest},
		{"unavailable provider", customer, func() models.BookingRequest { return validRequest("paused") }, ErrProviderUnavailable},
		{"unknown provider", customer, func() models.BookingRequest { return validRequest("ghost") }, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.CreateBooking(ctx, tt.actor, tt.req())
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
	if n := len(f.events.types()); n != 0 {
		t.Errorf("%d events published for rejected requests", n)
	}
}

func TestBookingLifecycle(t *testing.T) {
	f := newFixture(t, bookableProvider("prov-1", 4, 1, "cleaning"))
	ctx := context.Background()
	prov := providerActor("prov-1")

	b, err := f.bookings.CreateBooking(ctx, customer, validRequest("prov-1"))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := f.bookings.CompleteBooking(ctx, prov, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("complete before accept: got %v, want ErrInvalidTransition", err)
	}
	accepted, err := f.bookings.AcceptBooking(ctx, prov, b.ID)
	if err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}
	if accepted.Status != models.BookingAccepted {
		t.Errorf("status = %s, want accepted", accepted.Status)
	}
	completed, err := f.bookings.CompleteBooking(ctx, prov, b.ID)
	if err != nil {
		t.Fatalf("CompleteBooking: %v", err)
	}
	if completed.Status != models.BookingCompleted {
		t.Errorf("status = %s, want completed", completed.Status)
	}
	if _, err := f.bookings.DeclineBooking(ctx, prov, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("decline after complete: got %v, want ErrInvalidTransition", err)
	}

	want := []models.BookingEventType{models.EventBookingRequested, models.EventBookingAccepted, models.EventBookingCompleted}
	got := f.events.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDeclinedBookingIsTerminal(t *testing.T) {
	f := newFixture(t, bookableProvider("prov-1", 4, 1, "cleaning"))
	ctx := context.Background()
	prov := providerActor("prov-1")

	b, _ := f.bookings.CreateBooking(ctx, customer, validRequest("prov-1"))
	if _, err := f.bookings.DeclineBooking(ctx, prov, b.ID); err != nil {
		t.Fatalf("DeclineBooking: %v", err)
	}
	for _, op := range []func(context.Context, models.Actor, string) (*models.Booking, error){
		f.bookings.AcceptBooking, f.bookings.CompleteBooking, f.bookings.DeclineBooking,
	} {
		if _, err := op(ctx, prov, b.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("got %v, want ErrInvalidTransition", err)
		}
	}
}

func TestTransitionPermissions(t *testing.T) {
	f := newFixture(t, bookableProvider("prov-1", 4, 1, "cleaning"))
	ctx := context.Background()
	b, _ := f.bookings.CreateBooking(ctx, customer, validRequest("prov-1"))

	if _, err := f.bookings.AcceptBooking(ctx, providerActor("prov-2"), b.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("other provider: got %v, want ErrPermissionDenied", err)
	}
	if _, err := f.bookings.AcceptBooking(ctx, customer, b.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("customer: got %v, want ErrPermissionDenied", err)
	}
	if _, err := f.bookings.AcceptBooking(ctx, providerActor("prov-1"), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing booking: got %v, want ErrNotFound", err)
	}
	stored, _ := f.store.Bookings.GetByID(ctx, b.ID)
	if stored.Status != models.BookingRequested {
		t.Errorf("status changed to %s by a rejected call", stored.Status)
	}
}

func TestConcurrentAcceptAndDeclineOnlyOneWins(t *testing.T) {
	f := newFixture(t, bookableProvider("prov-1", 4, 1, "cleaning"))
	ctx := context.Background()
	prov := providerActor("prov-1")
	b, _ := f.bookings.CreateBooking(ctx, customer, validRequest("prov-1"))

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			op := f.bookings.AcceptBooking
			if i%2 == 1 {
				op = f.bookings.DeclineBooking
			}
			_, err := op(ctx, prov, b.ID)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if successes != 1 {
		t.Fatalf("%d transitions succeeded, want exactly 1", successes)
	}
}

func TestGetAndListBookings(t *testing.T) {
	f := newFixture(t, bookableProvider("prov-1", 4, 1, "cleaning"))
	ctx := context.Background()
	prov := providerActor("prov-1")

	mine, _ := f.bookings.CreateBooking(ctx, customer, validRequest("prov-1"))
	theirs, _ := f.bookings.CreateBooking(ctx, other, validRequest("prov-1"))
	if _, err := f.bookings.AcceptBooking(ctx, prov, theirs.ID); err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}

	if _, err := f.bookings.GetBooking(ctx, customer, mine.ID); err != nil {
		t.Errorf("customer reading own booking: %v", err)
	}
	if _, err := f.bookings.GetBooking(ctx, prov, mine.ID); err != nil {
		t.Errorf("provider reading booking: %v", err)
	}
	if _, err := f.bookings.GetBooking(ctx, customer, theirs.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("foreign booking: got %v, want ErrPermissionDenied", err)
	}

	list, err := f.bookings.ListForCustomer(ctx, customer)
	if err != nil || len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("ListForCustomer = %v, %v", list, err)
	}

	inbox, err := f.bookings.ListForProvider(ctx, prov, models.BookingRequested)
	if err != nil || len(inbox) != 1 || inbox[0].ID != mine.ID {
		t.Errorf("requested inbox = %v, %v", inbox, err)
	}
	all, err := f.bookings.ListForProvider(ctx, prov)
	if err != nil || len(all) != 2 {
		t.Errorf("full inbox has %d bookings, err %v", len(all), err)
	}
	if _, err := f.bookings.ListForProvider(ctx, prov, "paid"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("unknown status: got %v, want ErrInvalidRequest", err)
	}
	if _, err := f.bookings.ListForProvider(ctx, customer); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("customer inbox: got %v, want ErrPermissionDenied", err)
	}
}

func TestSubscribeDeliversChanges(t *testing.T) {
	f := newFixture(t, bookableProvider("prov-1", 4, 1, "cleaning"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	prov := providerActor("prov-1")

	sub, err := f.bookings.Subscribe(ctx, prov)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Stop()

	initial, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(initial) != 0 {
		t.Fatalf("initial snapshot has %d bookings", len(initial))
	}

	if _, err := f.bookings.CreateBooking(ctx, customer, validRequest("prov-1")); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	next, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(next) != 1 || next[0].Status != models.BookingRequested {
		t.Fatalf("snapshot after create = %+v", next)
	}
}

func TestTransitionsPersistEachStep(t *testing.T) {
	f := newFixture(t, bookableProvider("prov-1", 4, 1, "cleaning"))
	ctx := context.Background()
	prov := providerActor("prov-1")
	b, err := f.bookings.CreateBooking(ctx, customer, validRequest("prov-1"))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	steps := []struct {
		op   func(context.Context, models.Actor, string) (*models.Booking, error)
		want models.BookingStatus
	}{
		{f.bookings.AcceptBooking, models.BookingAccepted},
		{f.bookings.CompleteBooking, models.BookingCompleted},
	}
	for _, step := range steps {
		got, err := step.op(ctx, prov, b.ID)
		if err != nil {
			t.Fatalf("move to %s: %v", step.want, err)
		}
		if got.Status != step.want {
			t.Errorf("returned status = %s, want %s", got.Status, step.want)
		}
		stored, err := f.store.Bookings.GetByID(ctx, b.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if stored.Status != step.want {
			t.Errorf("stored status = %s, want %s", stored.Status, step.want)
		}
		if stored.CustomerID != customer.ID || stored.Address != b.Address {
			t.Errorf("transition changed other fields: %+v", stored)
		}
	}
}

func TestCompleteAfterDeclineLeavesBookingDeclined(t *testing.T) {
	f := newFixture(t, bookableProvider("prov-1", 4, 1, "cleaning"))
	ctx := context.Background()
	prov := providerActor("prov-1")
	b, _ := f.bookings.CreateBooking(ctx, customer, validRequest("prov-1"))

	if _, err := f.bookings.DeclineBooking(ctx, prov, b.ID); err != nil {
		t.Fatalf("DeclineBooking: %v", err)
	}
	if _, err := f.bookings.CompleteBooking(ctx, prov, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
	stored, _ := f.store.Bookings.GetByID(ctx, b.ID)
	if stored.Status != models.BookingDeclined {
		t.Errorf("stored status = %s, want declined", stored.Status)
	}
}
