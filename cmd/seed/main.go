package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"nestly/config"
	"nestly/database"
	"nestly/database/repository"
	"nestly/models"
	"nestly/services/booking"
	"nestly/services/rating"
	"nestly/utils"

	"go.uber.org/zap"
)

const (
	providersPerService = 6
	maxReviews          = 8
)

var firstNames = []string{"Achieng", "Baraka", "Chebet", "Daudi", "Esther", "Faith", "Githinji", "Halima", "Imani", "Jabari", "Kerubo", "Lemayian"}

// Seeds approved providers for every catalog service into the configured
// store. Ratings go through the rating service against completed bookings,
// so the rating audit sees consistent data. Re-running is safe.
func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.AppConfig.StoreBackend == repository.BackendMemory {
		log.Fatal("Refusing to seed the in-memory store")
	}
	store, err := repository.NewStore(config.AppConfig.StoreBackend)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	ratings := &rating.DefaultRatingService{BookingRepo: store.Bookings, Logger: zap.NewNop()}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rng := rand.New(rand.NewSource(42))
	seeded, rated := 0, 0
	for _, svc := range models.ServiceCatalog {
		for i := 1; i <= providersPerService; i++ {
			id := fmt.Sprintf("seed-%s-%02d", svc.ID, i)
			if err := seedProvider(ctx, store, rng, id, svc); err != nil {
				log.Fatalf("Failed to seed provider %s: %v", id, err)
			}
			seeded++

			reviews := rng.Intn(maxReviews + 1)
			for r := 0; r < reviews; r++ {
				ok, err := seedReview(ctx, store, ratings, rng, id, svc.ID, r)
				if err != nil {
					log.Fatalf("Failed to seed review %d for %s: %v", r, id, err)
				}
				if ok {
					rated++
				}
			}
		}
	}
	logger.Info("Seed complete", zap.Int("providers", seeded), zap.Int("newRatings", rated))
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
}

func seedProvider(ctx context.Context, store *repository.Store, rng *rand.Rand, id string, svc models.Service) error {
	name := firstNames[rng.Intn(len(firstNames))] + " " + svc.Name
	now := time.Now().UTC()
	if _, err := store.Providers.MergeApproved(ctx, &models.ProviderProfile{
		ProviderID:  id,
		DisplayName: name,
		Bio:         fmt.Sprintf("%s with %d years of experience.", svc.Name, 1+rng.Intn(15)),
		Services:    []string{svc.ID},
		IsApproved:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return err
	}
	online := rng.Intn(5) > 0
	accepting := true
	_, err := store.Providers.UpdateFields(ctx, id, models.ProviderPatch{
		IsOnline:          &online,
		AcceptingBookings: &accepting,
		UpdatedAt:         now,
	})
	return err
}

// seedReview creates a completed booking and rates it. It reports false when
// the review already existed from an earlier run.
func seedReview(ctx context.Context, store *repository.Store, ratings rating.RatingService, rng *rand.Rand, providerID, service string, n int) (bool, error) {
	bookingID := fmt.Sprintf("%s-review-%02d", providerID, n)
	customer := models.Actor{ID: fmt.Sprintf("seed-customer-%02d", n), Role: models.RoleCustomer}
	day := time.Now().UTC().AddDate(0, 0, -(n + 1))

	err := store.Bookings.Create(ctx, &models.Booking{
		ID:                  bookingID,
		CustomerID:          customer.ID,
		CustomerDisplayName: "Seed Customer",
		ProviderID:          providerID,
		Service:             service,
		ScheduledDate:       day.Format("2006-01-02"),
		ScheduledTime:       "10:00",
		Address:             "Seed address",
		Status:              models.BookingCompleted,
		CreatedAt:           day,
		UpdatedAt:           day,
	})
	if err != nil && !errors.Is(err, database.ErrConflict) {
		return false, err
	}

	// Skewed towards good ratings.
	value := 5 - rng.Intn(3)
	if rng.Intn(10) == 0 {
		value = 1 + rng.Intn(2)
	}
	if _, err := ratings.RateBooking(ctx, customer, bookingID, value); err != nil {
		if errors.Is(err, booking.ErrAlreadyRated) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
