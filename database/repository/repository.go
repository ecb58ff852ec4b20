package repository

import (
	"context"
	"fmt"

	"nestly/database"
	applicationRepo "nestly/database/repository/application"
	bookingRepo "nestly/database/repository/booking"
	memoryRepo "nestly/database/repository/memory"
	providerRepo "nestly/database/repository/provider"
	"nestly/utils"

	"cloud.google.com/go/firestore"
)

// Re-export the repository interfaces.
type (
	BookingRepository     = bookingRepo.BookingRepository
	ProviderRepository    = providerRepo.ProviderRepository
	ApplicationRepository = applicationRepo.ApplicationRepository
	Subscription          = bookingRepo.Subscription
	Tx                    = bookingRepo.Tx
)

// Store bundles the repositories of one backend.
type Store struct {
	Bookings     BookingRepository
	Providers    ProviderRepository
	Applications ApplicationRepository
	Pinger       utils.Pinger
}

// Supported STORE_BACKEND values.
const (
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// NewStore builds the repositories for the named backend.
func NewStore(backend string) (*Store, error) {
	switch backend {
	case BackendMongo, "":
		return newMongoStore()
	case BackendFirestore:
		return newFirestoreStore(utils.GetFirestoreClient()), nil
	case BackendMemory:
		return NewMemoryStore(memoryRepo.NewStore()), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func newMongoStore() (*Store, error) {
	db := database.MongoDatabase()
	bookings, err := bookingRepo.NewMongoBookingRepo(db)
	if err != nil {
		return nil, err
	}
	providers, err := providerRepo.NewMongoProviderRepo(db)
	if err != nil {
		return nil, err
	}
	applications, err := applicationRepo.NewMongoApplicationRepo(db)
	if err != nil {
		return nil, err
	}
	return &Store{
		Bookings:     bookings,
		Providers:    providers,
		Applications: applications,
		Pinger: pingFunc(func(ctx context.Context) error {
			return database.MongoClient.Ping(ctx, nil)
		}),
	}, nil
}

func newFirestoreStore(client *firestore.Client) *Store {
	return &Store{
		Bookings:     bookingRepo.NewFirestoreBookingRepo(client),
		Providers:    providerRepo.NewFirestoreProviderRepo(client),
		Applications: applicationRepo.NewFirestoreApplicationRepo(client),
		Pinger: pingFunc(func(ctx context.Context) error {
			return database.PingFirestore(ctx, client)
		}),
	}
}

// NewMemoryStore wraps an in-memory store, mainly for tests.
func NewMemoryStore(s *memoryRepo.Store) *Store {
	return &Store{
		Bookings:     s.Bookings(),
		Providers:    s.Providers(),
		Applications: s.Applications(),
		Pinger:       s,
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
