package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nestly/database"
	"nestly/models"

	"go.uber.org/zap"
)

var reviewable = []models.ApplicationStatus{models.ApplicationPending, models.ApplicationNeedsInfo}

func (s *DefaultApplicationService) ListApplications(ctx context.Context, status models.ApplicationStatus) ([]models.ProviderApplication, error) {
	if status != "" && !status.Valid() {
		return nil, newError(ErrInvalidRequest, "Unknown status %q", status)
	}
	apps, err := s.Repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// GetApplication returns the application with short-lived download URLs for its documents.
func (s *DefaultApplicationService) GetApplication(ctx context.Context, id string) (*models.ProviderApplication, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range app.Documents {
		url, err := s.Blobs.DownloadURL(ctx, app.Documents[i].Path, downloadURLTTL)
		if err != nil {
			s.logger().Warn("Failed to sign document URL",
				zap.String("applicationId", id),
				zap.String("path", app.Documents[i].Path),
				zap.Error(err))
			continue
		}
		app.Documents[i].DownloadURL = url
	}
	return app, nil
}

// Review records an admin decision. Approving publishes the provider profile
// and grants the provider role; repeating an approval re-applies both.
func (s *DefaultApplicationService) Review(ctx context.Context, reviewer, id string, decision models.ApplicationStatus, notes string) (*models.ProviderApplication, error) {
	if decision == models.ApplicationPending || !decision.Valid() {
		return nil, newError(ErrInvalidRequest, "Decision must be approved, rejected or needs_info")
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	alreadyApproved := app.Status == models.ApplicationApproved
	if !alreadyApproved && !isReviewable(app.Status) {
		return nil, ErrNotReviewable
	}
	if alreadyApproved && decision != models.ApplicationApproved {
		return nil, ErrNotReviewable
	}

	if decision == models.ApplicationApproved {
		if err := s.approve(ctx, app); err != nil {
			return nil, err
		}
		if alreadyApproved {
			return app, nil
		}
	}

	updated, err := s.Repo.UpdateReview(ctx, id, reviewable, models.ApplicationReview{
		Status:     decision,
		Notes:      strings.TrimSpace(notes),
		ReviewedBy: reviewer,
		ReviewedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			current, loadErr := s.load(ctx, id)
			if loadErr == nil && decision == models.ApplicationApproved && current.Status == models.ApplicationApproved {
				return current, nil
			}
			return nil, ErrNotReviewable
		}
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to record review for %s: %w", id, err)
	}

	s.logger().Info("Provider application reviewed",
		zap.String("applicationId", id),
		zap.String("decision", string(decision)),
		zap.String("reviewer", reviewer))
	return updated, nil
}

func (s *DefaultApplicationService) approve(ctx context.Context, app *models.ProviderApplication) error {
	now := s.now()
	profile, err := s.ProviderRepo.MergeApproved(ctx, &models.ProviderProfile{
		ProviderID:  app.ID,
		DisplayName: app.DisplayName,
		Bio:         app.Bio,
		Services:    app.Services,
		IsApproved:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("failed to publish provider profile %s: %w", app.ID, err)
	}
	if s.Roles != nil {
		if err := s.Roles.SetRole(ctx, app.ID, models.RoleProvider); err != nil {
			return fmt.Errorf("failed to grant provider role to %s: %w", app.ID, err)
		}
	}
	if s.MatchingSvc != nil {
		s.MatchingSvc.Invalidate(ctx, profile.Services...)
	}
	return nil
}

func isReviewable(status models.ApplicationStatus) bool {
	for _, r := range reviewable {
		if r == status {
			return true
		}
	}
	return false
}
