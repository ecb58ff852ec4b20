package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nestly/database"
	"nestly/models"

	"go.uber.org/zap"
)

func (s *DefaultProviderService) GetOwnProfile(ctx context.Context, actor models.Actor) (*models.ProviderProfile, error) {
	if actor.ID == "" || actor.Role != models.RoleProvider {
		return nil, ErrNotProvider
	}
	return s.load(ctx, actor.ID)
}

// GetProfile returns the public profile of an approved provider.
func (s *DefaultProviderService) GetProfile(ctx context.Context, providerID string) (*models.ProviderProfile, error) {
	profile, err := s.load(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if !profile.IsApproved {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (s *DefaultProviderService) load(ctx context.Context, id string) (*models.ProviderProfile, error) {
	profile, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load provider %s: %w", id, err)
	}
	return profile, nil
}

func (s *DefaultProviderService) UpdateProfile(ctx context.Context, actor models.Actor, update ProfileUpdate) (*models.ProviderProfile, error) {
	patch := models.ProviderPatch{
		PhotoURL: update.PhotoURL,
		Bio:      update.Bio,
	}
	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if name == "" {
			return nil, newError(ErrInvalidProfile, "Display name cannot be empty")
		}
		patch.DisplayName = &name
	}
	if update.Services != nil {
		services, unknown := models.NormalizeServices(*update.Services)
		if unknown != "" {
			return nil, newError(ErrInvalidServiceID, "Unknown service %q", unknown)
		}
		if len(services) == 0 {
			return nil, newError(ErrInvalidProfile, "At least one service is required")
		}
		patch.Services = &services
	}
	return s.apply(ctx, actor, patch)
}

func (s *DefaultProviderService) SetAvailability(ctx context.Context, actor models.Actor, update AvailabilityUpdate) (*models.ProviderProfile, error) {
	return s.apply(ctx, actor, models.ProviderPatch{
		IsOnline:          update.IsOnline,
		AcceptingBookings: update.AcceptingBookings,
	})
}

// apply writes patch to the actor's own profile and drops cached discovery
// results for every service the provider offered before or after the change.
func (s *DefaultProviderService) apply(ctx context.Context, actor models.Actor, patch models.ProviderPatch) (*models.ProviderProfile, error) {
	if actor.ID == "" || actor.Role != models.RoleProvider {
		return nil, ErrNotProvider
	}
	if patch.Empty() {
		return nil, ErrNothingToUpdate
	}
	before, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	patch.UpdatedAt = s.now()
	updated, err := s.Repo.UpdateFields(ctx, actor.ID, patch)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update provider %s: %w", actor.ID, err)
	}

	if s.MatchingSvc != nil {
		s.MatchingSvc.Invalidate(ctx, union(before.Services, updated.Services)...)
	}
	if s.Logger != nil {
		s.Logger.Info("Provider profile updated",
			zap.String("providerId", actor.ID),
			zap.Bool("bookable", updated.Bookable()))
	}
	return updated, nil
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
