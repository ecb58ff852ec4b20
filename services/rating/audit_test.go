package rating

import (
	"context"
	"testing"

	"nestly/database/repository"
	memoryRepo "nestly/database/repository/memory"
	"nestly/models"
)

func ratedBooking(id, providerID string, value int) models.Booking {
	b := completed(id, "c-"+id, providerID)
	b.CustomerRating = &value
	b.RatedAt = &ratedAt
	return b
}

func TestAuditorReportsDrift(t *testing.T) {
	mem := memoryRepo.NewStore()

	consistent := provider("ok")
	consistent.Rating, consistent.ReviewCount, consistent.RatingTotal = 4.5, 2, 9
	mem.SeedProvider(consistent)
	mem.SeedBooking(ratedBooking("b1", "ok", 5))
	mem.SeedBooking(ratedBooking("b2", "ok", 4))

	drifted := provider("drift")
	drifted.Rating, drifted.ReviewCount, drifted.RatingTotal = 5, 2, 10
	mem.SeedProvider(drifted)
	mem.SeedBooking(ratedBooking("b3", "drift", 5))

	legacy := provider("legacy")
	legacy.Rating, legacy.ReviewCount = 3, 1
	mem.SeedProvider(legacy)
	mem.SeedBooking(ratedBooking("b4", "legacy", 3))

	mem.SeedProvider(provider("fresh"))
	mem.SeedBooking(completed("b5", "c5", "fresh"))

	store := repository.NewMemoryStore(mem)
	auditor := &Auditor{Providers: store.Providers, Bookings: store.Bookings}

	drifts, err := auditor.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(drifts) != 1 {
		t.Fatalf("drifts = %+v, want exactly one", drifts)
	}
	d := drifts[0]
	if d.ProviderID != "drift" || d.StoredCount != 2 || d.ActualCount != 1 || d.ActualTotal != 5 || d.ExpectedRating != 5 {
		t.Errorf("drift = %+v", d)
	}
}
