package memoryRepo

import (
	"context"
	"sort"

	"nestly/database"
	"nestly/models"
)

// ProviderRepo implements providerRepo.ProviderRepository on a Store.
type ProviderRepo struct {
	s *Store
}

func (r *ProviderRepo) GetByID(_ context.Context, id string) (*models.ProviderProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.providers[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	p = copyProfile(p)
	return &p, nil
}

func (r *ProviderRepo) GetByService(ctx context.Context, service string) ([]models.ProviderProfile, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.ProviderProfile{}
	for i := range all {
		if all[i].Offers(service) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// GetAll returns profiles ordered by id.
func (r *ProviderRepo) GetAll(_ context.Context) ([]models.ProviderProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.ProviderProfile, 0, len(r.s.providers))
	for _, p := range r.s.providers {
		out = append(out, copyProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderID < out[j].ProviderID })
	return out, nil
}

func (r *ProviderRepo) MergeApproved(_ context.Context, profile *models.ProviderProfile) (*models.ProviderProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.providers[profile.ProviderID]
	if !ok {
		p = models.ProviderProfile{
			ProviderID:        profile.ProviderID,
			AcceptingBookings: true,
			CreatedAt:         profile.UpdatedAt,
		}
	}
	p.DisplayName = profile.DisplayName
	p.Bio = profile.Bio
	p.Services = append([]string(nil), profile.Services...)
	p.IsApproved = true
	p.UpdatedAt = profile.UpdatedAt
	r.s.providers[p.ProviderID] = p

	out := copyProfile(p)
	return &out, nil
}

func (r *ProviderRepo) UpdateFields(_ context.Context, id string, patch models.ProviderPatch) (*models.ProviderProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.providers[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	patch.Apply(&p)
	r.s.providers[id] = p

	out := copyProfile(p)
	return &out, nil
}
