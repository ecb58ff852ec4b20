package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"nestly/database"
	"nestly/database/repository"
	"nestly/models"

	"go.uber.org/zap"
)

// DiscoveryCache holds short-lived discovery results per service.
// Every service carries a generation that Invalidate bumps. Get reports the
// current generation even on a miss, and Set stores providers only while the
// generation is still the one the caller saw before reading the store.
type DiscoveryCache interface {
	Get(ctx context.Context, service string) (providers []models.ProviderProfile, generation int64, ok bool)
	Set(ctx context.Context, service string, generation int64, providers []models.ProviderProfile)
	Invalidate(ctx context.Context, services ...string)
}

// DefaultMatchingService implements MatchingService.
type DefaultMatchingService struct {
	ProviderRepo repository.ProviderRepository
	Cache        DiscoveryCache
	Logger       *zap.Logger
}

// ParseService resolves a catalog service by id or display name.
func ParseService(name string) (models.Service, error) {
	svc, ok := models.LookupService(name)
	if !ok {
		return models.Service{}, NewError(ErrInvalidService, "Unknown service %q", name)
	}
	return svc, nil
}

// MatchProviders filters the providers offering service down to the bookable
// ones and ranks them by rating, then by review count.
// When no providers match, it returns an empty list rather than an error.
func (s *DefaultMatchingService) MatchProviders(ctx context.Context, service string) ([]models.ProviderProfile, error) {
	svc, err := ParseService(service)
	if err != nil {
		return nil, err
	}
	var generation int64
	if s.Cache != nil {
		cached, gen, ok := s.Cache.Get(ctx, svc.ID)
		if ok {
			return cached, nil
		}
		generation = gen
	}

	profiles, err := s.ProviderRepo.GetByService(ctx, svc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to match providers: %w", err)
	}
	ranked := RankProviders(profiles)
	if len(ranked) == 0 && s.Logger != nil {
		s.Logger.Debug("No providers matched", zap.String("service", svc.ID))
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, svc.ID, generation, ranked)
	}
	return ranked, nil
}

// RankProviders keeps bookable profiles and sorts them by rating descending,
// ties broken by review count descending. Input order is kept among exact ties.
func RankProviders(profiles []models.ProviderProfile) []models.ProviderProfile {
	ranked := make([]models.ProviderProfile, 0, len(profiles))
	for i := range profiles {
		if profiles[i].Bookable() {
			ranked = append(ranked, profiles[i])
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].ReviewCount > ranked[j].ReviewCount
	})
	return ranked
}

// EligibleProvider reads the provider fresh from the store and applies the
// discovery rules to it alone.
func (s *DefaultMatchingService) EligibleProvider(ctx context.Context, service, providerID string) (*models.ProviderProfile, error) {
	svc, err := ParseService(service)
	if err != nil {
		return nil, err
	}
	profile, err := s.ProviderRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NewError(ErrNotFound, "Provider not found")
		}
		return nil, fmt.Errorf("failed to load provider %s: %w", providerID, err)
	}
	if !profile.Offers(svc.ID) || !profile.Bookable() {
		return nil, ErrProviderUnavailable
	}
	return profile, nil
}

func (s *DefaultMatchingService) Invalidate(ctx context.Context, services ...string) {
	if s.Cache != nil && len(services) > 0 {
		s.Cache.Invalidate(ctx, services...)
	}
}
