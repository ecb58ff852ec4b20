package providerRepo

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

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo creates a new instance of ProviderRepository using MongoDB.
func NewMongoProviderRepo(db *mongo.Database) (*MongoProviderRepo, error) {
	repo := &MongoProviderRepo{coll: db.Collection(database.ProvidersCollection)}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var profile models.ProviderProfile
	if err := r.coll.FindOne(ctx, bson.M{"providerId": id}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch provider with id %s: %w", id, err)
	}
	return &profile, nil
}

func (r *MongoProviderRepo) GetByService(ctx context.Context, service string) ([]models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.find(ctx, bson.M{"services": service})
}

func (r *MongoProviderRepo) GetAll(ctx context.Context) ([]models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return r.find(ctx, bson.M{})
}

func (r *MongoProviderRepo) find(ctx context.Context, filter bson.M) ([]models.ProviderProfile, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve providers: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []models.ProviderProfile{}
	for cursor.Next(ctx) {
		var p models.ProviderProfile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode provider: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return profiles, nil
}

func (r *MongoProviderRepo) MergeApproved(ctx context.Context, profile *models.ProviderProfile) (*models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"displayName": profile.DisplayName,
			"bio":         profile.Bio,
			"services":    profile.Services,
			"isApproved":  true,
			"updatedAt":   profile.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"providerId":        profile.ProviderID,
			"isOnline":          false,
			"acceptingBookings": true,
			"rating":            0.0,
			"reviewCount":       0,
			"ratingTotal":       0,
			"createdAt":         profile.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var merged models.ProviderProfile
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"providerId": profile.ProviderID}, update, opts).Decode(&merged); err != nil {
		return nil, fmt.Errorf("failed to merge provider %s: %w", profile.ProviderID, err)
	}
	return &merged, nil
}

func (r *MongoProviderRepo) UpdateFields(ctx context.Context, id string, patch models.ProviderPatch) (*models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.ProviderProfile
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"providerId": id}, bson.M{"$set": bson.M(patchFields(patch))}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update provider %s: %w", id, err)
	}
	return &updated, nil
}
