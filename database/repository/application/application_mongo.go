package applicationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nestly/database"
	"nestly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoApplicationRepo implements ApplicationRepository using MongoDB.
type MongoApplicationRepo struct {
	coll *mongo.Collection
}

// NewMongoApplicationRepo creates a MongoApplicationRepo and its indexes.
func NewMongoApplicationRepo(db *mongo.Database) (*MongoApplicationRepo, error) {
	repo := &MongoApplicationRepo{coll: db.Collection(database.ApplicationsCollection)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "submittedAt", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create application indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoApplicationRepo) Save(ctx context.Context, app *models.ProviderApplication) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"id": app.ID}, app, opts); err != nil {
		return fmt.Errorf("failed to save application %s: %w", app.ID, err)
	}
	return nil
}

func (r *MongoApplicationRepo) GetByID(ctx context.Context, id string) (*models.ProviderApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var app models.ProviderApplication
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&app); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch application %s: %w", id, err)
	}
	return &app, nil
}

func (r *MongoApplicationRepo) List(ctx context.Context, status models.ApplicationStatus) ([]models.ProviderApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer cursor.Close(ctx)

	apps := []models.ProviderApplication{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	return apps, nil
}

func (r *MongoApplicationRepo) AddDocument(ctx context.Context, id string, doc models.DocumentRef) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"documents": doc},
		"$set":  bson.M{"updatedAt": doc.UploadedAt},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to add document to application %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *MongoApplicationRepo) UpdateReview(ctx context.Context, id string, from []models.ApplicationStatus, review models.ApplicationReview) (*models.ProviderApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{
		"status":        review.Status,
		"reviewerNotes": review.Notes,
		"reviewedBy":    review.ReviewedBy,
		"reviewedAt":    review.ReviewedAt,
		"updatedAt":     review.ReviewedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var app models.ProviderApplication
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&app)
	if err == nil {
		return &app, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to review application %s: %w", id, err)
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, database.ErrConflict
}
