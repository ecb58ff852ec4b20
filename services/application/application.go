package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nestly/database"
	"nestly/models"
	"nestly/utils"

	"go.uber.org/zap"
)

// SubmitApplication creates or replaces the actor's application and puts it
// back into the pending queue. Uploaded documents are kept.
func (s *DefaultApplicationService) SubmitApplication(ctx context.Context, actor models.Actor, input models.ApplicationInput) (*models.ProviderApplication, error) {
	if actor.ID == "" || actor.Role != models.RoleProvider {
		return nil, ErrPermissionDenied
	}
	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, newError(ErrInvalidRequest, "Display name is required")
	}
	area := strings.TrimSpace(input.ServiceArea)
	if area == "" {
		return nil, newError(ErrInvalidRequest, "Service area is required")
	}
	if input.ExperienceYears < 0 {
		return nil, newError(ErrInvalidRequest, "Experience cannot be negative")
	}
	phone := utils.NormalizePhoneNumber(input.Phone)
	if !utils.IsE164(phone) {
		return nil, newError(ErrInvalidRequest, "Phone number must be in international format, e.g. +254712345678")
	}
	services, unknown := models.NormalizeServices(input.Services)
	if unknown != "" {
		return nil, newError(ErrInvalidService, "Unknown service %q", unknown)
	}
	if len(services) == 0 {
		return nil, newError(ErrInvalidRequest, "At least one service is required")
	}

	now := s.now()
	app := &models.ProviderApplication{
		ID:          actor.ID,
		SubmittedAt: now,
	}
	existing, err := s.Repo.GetByID(ctx, actor.ID)
	switch {
	case err == nil:
		if existing.Status == models.ApplicationApproved {
			return nil, ErrAlreadyApproved
		}
		app.Documents = existing.Documents
		app.SubmittedAt = existing.SubmittedAt
	case errors.Is(err, database.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load application %s: %w", actor.ID, err)
	}

	app.DisplayName = name
	app.Email = actor.Email
	app.Phone = phone
	app.Services = services
	app.Bio = strings.TrimSpace(input.Bio)
	app.ExperienceYears = input.ExperienceYears
	app.ServiceArea = area
	app.Status = models.ApplicationPending
	app.UpdatedAt = now

	if err := s.Repo.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to save application %s: %w", actor.ID, err)
	}
	s.logger().Info("Provider application submitted",
		zap.String("applicationId", app.ID),
		zap.Strings("services", app.Services))
	return app, nil
}

func (s *DefaultApplicationService) UploadDocument(ctx context.Context, actor models.Actor, upload Upload) (*models.DocumentRef, error) {
	if actor.ID == "" || actor.Role != models.RoleProvider {
		return nil, ErrPermissionDenied
	}
	if !upload.Kind.Valid() {
		return nil, newError(ErrInvalidRequest, "Unknown document kind %q", upload.Kind)
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(upload.ContentType, ";", 2)[0]))
	if !allowedContentTypes[contentType] {
		return nil, ErrUnsupportedType
	}
	if upload.Size <= 0 {
		return nil, newError(ErrInvalidRequest, "File is empty")
	}
	if upload.Size > MaxDocumentSize {
		return nil, ErrFileTooLarge
	}

	app, err := s.Repo.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, newError(ErrNotFound, "Submit your application before uploading documents")
		}
		return nil, fmt.Errorf("failed to load application %s: %w", actor.ID, err)
	}
	if app.Status == models.ApplicationApproved {
		return nil, ErrAlreadyApproved
	}

	folder := documentFolder + "/" + actor.ID + "/" + string(upload.Kind)
	objectPath, err := s.Blobs.Upload(ctx, upload.Content, folder, upload.FileName, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	doc := models.DocumentRef{
		Kind:        upload.Kind,
		Path:        objectPath,
		FileName:    upload.FileName,
		ContentType: contentType,
		Size:        upload.Size,
		UploadedAt:  s.now(),
	}
	if err := s.Repo.AddDocument(ctx, actor.ID, doc); err != nil {
		if delErr := s.Blobs.Delete(ctx, objectPath); delErr != nil {
			s.logger().Warn("Failed to remove orphaned document", zap.String("path", objectPath), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to attach document to application %s: %w", actor.ID, err)
	}
	s.logger().Info("Application document uploaded",
		zap.String("applicationId", actor.ID),
		zap.String("kind", string(upload.Kind)))
	return &doc, nil
}

func (s *DefaultApplicationService) GetOwnApplication(ctx context.Context, actor models.Actor) (*models.ProviderApplication, error) {
	if actor.ID == "" || actor.Role != models.RoleProvider {
		return nil, ErrPermissionDenied
	}
	return s.load(ctx, actor.ID)
}

func (s *DefaultApplicationService) load(ctx context.Context, id string) (*models.ProviderApplication, error) {
	app, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load application %s: %w", id, err)
	}
	return app, nil
}
