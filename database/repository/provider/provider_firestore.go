package providerRepo

import (
	"context"
	"fmt"
	"time"

	"nestly/database"
	"nestly/models"

	"cloud.google.com/go/firestore"
)

// FirestoreProviderRepo implements ProviderRepository on Cloud Firestore,
// keyed by provider id.
type FirestoreProviderRepo struct {
	client *firestore.Client
	coll   *firestore.CollectionRef
}

// NewFirestoreProviderRepo constructs a FirestoreProviderRepo.
func NewFirestoreProviderRepo(client *firestore.Client) *FirestoreProviderRepo {
	return &FirestoreProviderRepo{client: client, coll: client.Collection(database.ProvidersCollection)}
}

func (r *FirestoreProviderRepo) GetByID(ctx context.Context, id string) (*models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snap, err := r.coll.Doc(id).Get(ctx)
	if err != nil {
		if database.IsFirestoreNotFound(err) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch provider with id %s: %w", id, err)
	}
	return decodeProfile(snap)
}

func decodeProfile(snap *firestore.DocumentSnapshot) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode provider %s: %w", snap.Ref.ID, err)
	}
	return &profile, nil
}

func (r *FirestoreProviderRepo) GetByService(ctx context.Context, service string) ([]models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.getAll(ctx, r.coll.Where("services", "array-contains", service))
}

func (r *FirestoreProviderRepo) GetAll(ctx context.Context) ([]models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return r.getAll(ctx, r.coll.Query)
}

func (r *FirestoreProviderRepo) getAll(ctx context.Context, q firestore.Query) ([]models.ProviderProfile, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve providers: %w", err)
	}
	profiles := make([]models.ProviderProfile, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProfile(doc)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

func (r *FirestoreProviderRepo) MergeApproved(ctx context.Context, profile *models.ProviderProfile) (*models.ProviderProfile, error) {
	ref := r.coll.Doc(profile.ProviderID)
	var merged *models.ProviderProfile

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && !database.IsFirestoreNotFound(err) {
			return err
		}
		if snap == nil || !snap.Exists() {
			created := models.ProviderProfile{
				ProviderID:        profile.ProviderID,
				DisplayName:       profile.DisplayName,
				Bio:               profile.Bio,
				Services:          profile.Services,
				AcceptingBookings: true,
				IsApproved:        true,
				CreatedAt:         profile.UpdatedAt,
				UpdatedAt:         profile.UpdatedAt,
			}
			merged = &created
			return tx.Set(ref, created)
		}

		existing, err := decodeProfile(snap)
		if err != nil {
			return err
		}
		existing.DisplayName = profile.DisplayName
		existing.Bio = profile.Bio
		existing.Services = profile.Services
		existing.IsApproved = true
		existing.UpdatedAt = profile.UpdatedAt
		merged = existing
		return tx.Set(ref, map[string]interface{}{
			"displayName": profile.DisplayName,
			"bio":         profile.Bio,
			"services":    profile.Services,
			"isApproved":  true,
			"updatedAt":   profile.UpdatedAt,
		}, firestore.MergeAll)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to merge provider %s: %w", profile.ProviderID, err)
	}
	return merged, nil
}

func (r *FirestoreProviderRepo) UpdateFields(ctx context.Context, id string, patch models.ProviderPatch) (*models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	fields := patchFields(patch)
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := r.coll.Doc(id).Update(ctx, updates); err != nil {
		if database.IsFirestoreNotFound(err) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update provider %s: %w", id, err)
	}
	return r.GetByID(ctx, id)
}
