package applicationRepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nestly/database"
	"nestly/models"

	"cloud.google.com/go/firestore"
)

// FirestoreApplicationRepo implements ApplicationRepository on Cloud Firestore.
type FirestoreApplicationRepo struct {
	client *firestore.Client
	coll   *firestore.CollectionRef
}

func NewFirestoreApplicationRepo(client *firestore.Client) *FirestoreApplicationRepo {
	return &FirestoreApplicationRepo{client: client, coll: client.Collection(database.ApplicationsCollection)}
}

func (r *FirestoreApplicationRepo) Save(ctx context.Context, app *models.ProviderApplication) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.Doc(app.ID).Set(ctx, app); err != nil {
		return fmt.Errorf("failed to save application %s: %w", app.ID, err)
	}
	return nil
}

func (r *FirestoreApplicationRepo) GetByID(ctx context.Context, id string) (*models.ProviderApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snap, err := r.coll.Doc(id).Get(ctx)
	if err != nil {
		if database.IsFirestoreNotFound(err) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch application %s: %w", id, err)
	}
	return decodeApplication(snap)
}

func decodeApplication(snap *firestore.DocumentSnapshot) (*models.ProviderApplication, error) {
	var app models.ProviderApplication
	if err := snap.DataTo(&app); err != nil {
		return nil, fmt.Errorf("failed to decode application %s: %w", snap.Ref.ID, err)
	}
	return &app, nil
}

func (r *FirestoreApplicationRepo) List(ctx context.Context, status models.ApplicationStatus) ([]models.ProviderApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	q := r.coll.Query
	if status != "" {
		q = q.Where("status", "==", string(status))
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	apps := make([]models.ProviderApplication, 0, len(docs))
	for _, doc := range docs {
		app, err := decodeApplication(doc)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].SubmittedAt.Before(apps[j].SubmittedAt) })
	return apps, nil
}

func (r *FirestoreApplicationRepo) AddDocument(ctx context.Context, id string, doc models.DocumentRef) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.Doc(id).Update(ctx, []firestore.Update{
		{Path: "documents", Value: firestore.ArrayUnion(doc)},
		{Path: "updatedAt", Value: doc.UploadedAt},
	})
	if err != nil {
		if database.IsFirestoreNotFound(err) {
			return database.ErrNotFound
		}
		return fmt.Errorf("failed to add document to application %s: %w", id, err)
	}
	return nil
}

func (r *FirestoreApplicationRepo) UpdateReview(ctx context.Context, id string, from []models.ApplicationStatus, review models.ApplicationReview) (*models.ProviderApplication, error) {
	ref := r.coll.Doc(id)
	var reviewed *models.ProviderApplication

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if database.IsFirestoreNotFound(err) {
				return database.ErrNotFound
			}
			return err
		}
		app, err := decodeApplication(snap)
		if err != nil {
			return err
		}
		if !statusIn(app.Status, from) {
			return database.ErrConflict
		}
		reviewedAt := review.ReviewedAt
		app.Status = review.Status
		app.ReviewerNotes = review.Notes
		app.ReviewedBy = review.ReviewedBy
		app.ReviewedAt = &reviewedAt
		app.UpdatedAt = reviewedAt
		reviewed = app
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(review.Status)},
			{Path: "reviewerNotes", Value: review.Notes},
			{Path: "reviewedBy", Value: review.ReviewedBy},
			{Path: "reviewedAt", Value: reviewedAt},
			{Path: "updatedAt", Value: reviewedAt},
		})
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

func statusIn(s models.ApplicationStatus, set []models.ApplicationStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
