package providerRepo

import (
	"context"

	"nestly/models"
)

// ProviderRepository defines methods for provider profile data access.
// None of its writes touch the rating fields; those belong to the booking
// repository's transaction.
type ProviderRepository interface {
	// GetByID retrieves a provider profile by the provider's identity id.
	GetByID(ctx context.Context, id string) (*models.ProviderProfile, error)
	// GetByService returns every profile whose service set contains service.
	GetByService(ctx context.Context, service string) ([]models.ProviderProfile, error)
	// GetAll retrieves all provider profiles.
	GetAll(ctx context.Context) ([]models.ProviderProfile, error)
	// MergeApproved creates the profile or merges the approved application
	// fields into an existing one, leaving rating state as stored.
	MergeApproved(ctx context.Context, profile *models.ProviderProfile) (*models.ProviderProfile, error)
	// UpdateFields applies a provider-editable patch and returns the result.
	UpdateFields(ctx context.Context, id string, patch models.ProviderPatch) (*models.ProviderProfile, error)
}

// patchFields lists the stored field names and values set by a patch.
func patchFields(patch models.ProviderPatch) map[string]interface{} {
	fields := map[string]interface{}{"updatedAt": patch.UpdatedAt}
	if patch.DisplayName != nil {
		fields["displayName"] = *patch.DisplayName
	}
	if patch.Bio != nil {
		fields["bio"] = *patch.Bio
	}
	if patch.PhotoURL != nil {
		fields["photoUrl"] = *patch.PhotoURL
	}
	if patch.Services != nil {
		fields["services"] = *patch.Services
	}
	if patch.IsOnline != nil {
		fields["isOnline"] = *patch.IsOnline
	}
	if patch.AcceptingBookings != nil {
		fields["acceptingBookings"] = *patch.AcceptingBookings
	}
	if patch.DeviceToken != nil {
		fields["deviceToken"] = *patch.DeviceToken
	}
	return fields
}
