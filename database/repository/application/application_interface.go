package applicationRepo

import (
	"context"

	"nestly/models"
)

// ApplicationRepository stores provider onboarding applications keyed by provider id.
type ApplicationRepository interface {
	// Save creates or replaces the application with the same id.
	Save(ctx context.Context, app *models.ProviderApplication) error
	GetByID(ctx context.Context, id string) (*models.ProviderApplication, error)
	// List returns applications with the given status, or all when status is empty.
	List(ctx context.Context, status models.ApplicationStatus) ([]models.ProviderApplication, error)
	AddDocument(ctx context.Context, id string, doc models.DocumentRef) error
	// UpdateReview records review only while the stored status is one of from.
	// It returns database.ErrConflict when the status has moved on.
	UpdateReview(ctx context.Context, id string, from []models.ApplicationStatus, review models.ApplicationReview) (*models.ProviderApplication, error)
}
