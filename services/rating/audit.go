package rating

import (
	"context"
	"fmt"

	"nestly/database/repository"
	"nestly/models"

	"go.uber.org/zap"
)

// Drift describes a provider whose stored aggregate disagrees with its rated bookings.
type Drift struct {
	ProviderID     string  `json:"providerId"`
	StoredCount    int     `json:"storedCount"`
	ActualCount    int     `json:"actualCount"`
	StoredTotal    int     `json:"storedTotal"`
	ActualTotal    int     `json:"actualTotal"`
	StoredRating   float64 `json:"storedRating"`
	ExpectedRating float64 `json:"expectedRating"`
}

// Auditor recomputes every provider's aggregate from the rated bookings. It never writes.
type Auditor struct {
	Providers repository.ProviderRepository
	Bookings  repository.BookingRepository
	Logger    *zap.Logger
}

// Run compares stored aggregates with the bookings and logs each mismatch.
func (a *Auditor) Run(ctx context.Context) ([]Drift, error) {
	providers, err := a.Providers.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("rating audit: %w", err)
	}
	rated, err := a.Bookings.Find(ctx, models.BookingQuery{RatedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("rating audit: %w", err)
	}

	type sum struct{ count, total int }
	actual := make(map[string]sum, len(providers))
	for _, b := range rated {
		s := actual[b.ProviderID]
		s.count++
		s.total += *b.CustomerRating
		actual[b.ProviderID] = s
	}

	var drifts []Drift
	for _, p := range providers {
		got := actual[p.ProviderID]
		storedTotal := p.RatingTotal
		if storedTotal == 0 && p.ReviewCount > 0 {
			storedTotal = LegacyTotal(p.Rating, p.ReviewCount)
		}
		expected := RoundedMean(got.total, got.count)
		if p.ReviewCount == got.count && storedTotal == got.total && p.Rating == expected {
			continue
		}
		d := Drift{
			ProviderID:     p.ProviderID,
			StoredCount:    p.ReviewCount,
			ActualCount:    got.count,
			StoredTotal:    storedTotal,
			ActualTotal:    got.total,
			StoredRating:   p.Rating,
			ExpectedRating: expected,
		}
		drifts = append(drifts, d)
		if a.Logger != nil {
			a.Logger.Warn("Rating drift detected",
				zap.String("providerId", d.ProviderID),
				zap.Int("storedCount", d.StoredCount),
				zap.Int("actualCount", d.ActualCount),
				zap.Int("storedTotal", d.StoredTotal),
				zap.Int("actualTotal", d.ActualTotal),
				zap.Float64("storedRating", d.StoredRating),
				zap.Float64("expectedRating", d.ExpectedRating))
		}
	}
	if a.Logger != nil {
		a.Logger.Info("Rating audit finished",
			zap.Int("providers", len(providers)),
			zap.Int("ratedBookings", len(rated)),
			zap.Int("drifted", len(drifts)))
	}
	return drifts, nil
}
