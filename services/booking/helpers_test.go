package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"nestly/database/repository"
	memoryRepo "nestly/database/repository/memory"
	"nestly/models"
)

var (
	testNow  = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	customer = models.Actor{ID: "cust-1", Role: models.RoleCustomer, DisplayName: "Amina", Phone: "+254700000001"}
	other    = models.Actor{ID: "cust-2", Role: models.RoleCustomer, DisplayName: "Brian", Email: "brian@example.com"}
)

func providerActor(id string) models.Actor {
	return models.Actor{ID: id, Role: models.RoleProvider, DisplayName: id}
}

func bookableProvider(id string, rating float64, reviews int, services ...string) models.ProviderProfile {
	return models.ProviderProfile{
		ProviderID:        id,
		DisplayName:       "Provider " + id,
		Services:          services,
		AcceptingBookings: true,
		IsOnline:          true,
		IsApproved:        true,
		Rating:            rating,
		ReviewCount:       reviews,
		RatingTotal:       int(rating * float64(reviews)),
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.BookingEvent
}

func (p *recordingPublisher) PublishBookingEvent(_ context.Context, e models.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []models.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.BookingEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	mem      *memoryRepo.Store
	store    *repository.Store
	matching *DefaultMatchingService
	bookings *DefaultBookingService
	events   *recordingPublisher
}

func newFixture(t *testing.T, providers ...models.ProviderProfile) *fixture {
	t.Helper()
	mem := memoryRepo.NewStore()
	for _, p := range providers {
		mem.SeedProvider(p)
	}
	store := repository.NewMemoryStore(mem)
	matching := &DefaultMatchingService{ProviderRepo: store.Providers}
	events := &recordingPublisher{}
	return &fixture{
		mem:      mem,
		store:    store,
		matching: matching,
		events:   events,
		bookings: &DefaultBookingService{
			BookingRepo: store.Bookings,
			MatchingSvc: matching,
			Events:      events,
			Now:         func() time.Time { return testNow },
		},
	}
}

func validRequest(providerID string) models.BookingRequest {
	return models.BookingRequest{
		Service:       "cleaning",
		ProviderID:    providerID,
		ScheduledDate: "2026-03-12",
		ScheduledTime: "10:30",
		Address:       "12 Riverside Drive",
	}
}
