package provider

import (
	"context"
	"time"

	"nestly/database/repository"
	"nestly/models"
	"nestly/services/booking"

	"go.uber.org/zap"
)

// ProfileUpdate carries provider-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	DisplayName *string   `json:"displayName"`
	Bio         *string   `json:"bio"`
	PhotoURL    *string   `json:"photoUrl"`
	Services    *[]string `json:"services"`
}

// AvailabilityUpdate toggles booking eligibility. Nil means unchanged.
type AvailabilityUpdate struct {
	IsOnline          *bool `json:"isOnline"`
	AcceptingBookings *bool `json:"acceptingBookings"`
}

type ProviderService interface {
	GetOwnProfile(ctx context.Context, actor models.Actor) (*models.ProviderProfile, error)
	GetProfile(ctx context.Context, providerID string) (*models.ProviderProfile, error)
	UpdateProfile(ctx context.Context, actor models.Actor, update ProfileUpdate) (*models.ProviderProfile, error)
	SetAvailability(ctx context.Context, actor models.Actor, update AvailabilityUpdate) (*models.ProviderProfile, error)
	RegisterDeviceToken(ctx context.Context, actor models.Actor, token string) error
	ClearDeviceToken(ctx context.Context, actor models.Actor) error
}

// DefaultProviderService is the production implementation.
type DefaultProviderService struct {
	Repo        repository.ProviderRepository
	MatchingSvc booking.MatchingService
	Logger      *zap.Logger
	Now         func() time.Time
}

func (s *DefaultProviderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
