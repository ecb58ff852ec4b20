package memoryRepo

import (
	"context"
	"sort"

	"nestly/database"
	"nestly/models"
)

// ApplicationRepo implements applicationRepo.ApplicationRepository on a Store.
type ApplicationRepo struct {
	s *Store
}

func (r *ApplicationRepo) Save(_ context.Context, app *models.ProviderApplication) error {
	r.s.mu.Lock()
	r.s.applications[app.ID] = copyApplication(*app)
	r.s.mu.Unlock()
	return nil
}

func (r *ApplicationRepo) GetByID(_ context.Context, id string) (*models.ProviderApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.applications[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	a = copyApplication(a)
	return &a, nil
}

func (r *ApplicationRepo) List(_ context.Context, status models.ApplicationStatus) ([]models.ProviderApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.ProviderApplication{}
	for _, a := range r.s.applications {
		if status == "" || a.Status == status {
			out = append(out, copyApplication(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (r *ApplicationRepo) AddDocument(_ context.Context, id string, doc models.DocumentRef) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok {
		return database.ErrNotFound
	}
	a.Documents = append(append([]models.DocumentRef(nil), a.Documents...), doc)
	a.UpdatedAt = doc.UploadedAt
	r.s.applications[id] = a
	return nil
}

func (r *ApplicationRepo) UpdateReview(_ context.Context, id string, from []models.ApplicationStatus, review models.ApplicationReview) (*models.ProviderApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	allowed := false
	for _, s := range from {
		if a.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, database.ErrConflict
	}
	reviewedAt := review.ReviewedAt
	a.Status = review.Status
	a.ReviewerNotes = review.Notes
	a.ReviewedBy = review.ReviewedBy
	a.ReviewedAt = &reviewedAt
	a.UpdatedAt = reviewedAt
	r.s.applications[id] = a

	out := copyApplication(a)
	return &out, nil
}
