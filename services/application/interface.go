package application

import (
	"context"
	"io"
	"time"

	"nestly/database/repository"
	"nestly/models"
	"nestly/services/booking"
	"nestly/services/storage"

	"go.uber.org/zap"
)

const (
	MaxDocumentSize = 10 << 20
	documentFolder  = "applications"
	downloadURLTTL  = 15 * time.Minute
)

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Upload is a document received from a provider.
type Upload struct {
	Kind        models.DocumentKind
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// RoleGranter promotes an identity to the provider role once approved.
type RoleGranter interface {
	SetRole(ctx context.Context, uid string, role models.Role) error
}

type ApplicationService interface {
	SubmitApplication(ctx context.Context, actor models.Actor, input models.ApplicationInput) (*models.ProviderApplication, error)
	UploadDocument(ctx context.Context, actor models.Actor, upload Upload) (*models.DocumentRef, error)
	GetOwnApplication(ctx context.Context, actor models.Actor) (*models.ProviderApplication, error)

	ListApplications(ctx context.Context, status models.ApplicationStatus) ([]models.ProviderApplication, error)
	GetApplication(ctx context.Context, id string) (*models.ProviderApplication, error)
	Review(ctx context.Context, reviewer, id string, decision models.ApplicationStatus, notes string) (*models.ProviderApplication, error)
}

// DefaultApplicationService is the production implementation.
type DefaultApplicationService struct {
	Repo         repository.ApplicationRepository
	ProviderRepo repository.ProviderRepository
	Blobs        storage.BlobStore
	Roles        RoleGranter
	MatchingSvc  booking.MatchingService
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultApplicationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DefaultApplicationService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
