package memoryRepo

import (
	"context"
	"sync"

	"nestly/models"
)

// Store is a process-local document store. Transactions are serialised by
// txMu and their writes are applied field by field at commit, so
// non-transactional profile edits are never overwritten by a transaction.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	bookings     map[string]models.Booking
	providers    map[string]models.ProviderProfile
	applications map[string]models.ProviderApplication

	watchers    map[int]chan struct{}
	nextWatcher int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		bookings:     make(map[string]models.Booking),
		providers:    make(map[string]models.ProviderProfile),
		applications: make(map[string]models.ProviderApplication),
		watchers:     make(map[int]chan struct{}),
	}
}

// Bookings returns the booking repository view of the store.
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }

// Providers returns the provider repository view of the store.
func (s *Store) Providers() *ProviderRepo { return &ProviderRepo{s: s} }

// Applications returns the application repository view of the store.
func (s *Store) Applications() *ApplicationRepo { return &ApplicationRepo{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// SeedProvider stores p as is, rating fields included.
func (s *Store) SeedProvider(p models.ProviderProfile) {
	s.mu.Lock()
	s.providers[p.ProviderID] = copyProfile(p)
	s.mu.Unlock()
}

// SeedBooking stores b as is and notifies watchers.
func (s *Store) SeedBooking(b models.Booking) {
	s.mu.Lock()
	s.bookings[b.ID] = copyBooking(b)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func copyBooking(b models.Booking) models.Booking {
	if b.CustomerRating != nil {
		v := *b.CustomerRating
		b.CustomerRating = &v
	}
	if b.RatedAt != nil {
		t := *b.RatedAt
		b.RatedAt = &t
	}
	return b
}

func copyProfile(p models.ProviderProfile) models.ProviderProfile {
	p.Services = append([]string(nil), p.Services...)
	return p
}

func copyApplication(a models.ProviderApplication) models.ProviderApplication {
	a.Services = append([]string(nil), a.Services...)
	a.Documents = append([]models.DocumentRef(nil), a.Documents...)
	if a.ReviewedAt != nil {
		t := *a.ReviewedAt
		a.ReviewedAt = &t
	}
	return a
}
