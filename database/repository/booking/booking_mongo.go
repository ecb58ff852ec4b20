package bookingRepo

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
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl  *mongo.Collection
	providerColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo(db *mongo.Database) (*MongoBookingRepo, error) {
	repo := &MongoBookingRepo{
		bookingColl:  db.Collection(database.BookingsCollection),
		providerColl: db.Collection(database.ProvidersCollection),
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.bookingColl.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("booking %s: %w", booking.ID, database.ErrConflict)
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return findBooking(ctx, r.bookingColl, id)
}

func findBooking(ctx context.Context, coll *mongo.Collection, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) Find(ctx context.Context, q models.BookingQuery) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.bookingColl.Find(ctx, queryFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// queryFilter translates a BookingQuery into a find filter.
func queryFilter(q models.BookingQuery) bson.M {
	filter := bson.M{}
	if q.CustomerID != "" {
		filter["customerId"] = q.CustomerID
	}
	if q.ProviderID != "" {
		filter["providerId"] = q.ProviderID
	}
	if len(q.Statuses) > 0 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	if q.RatedOnly {
		filter["customerRating"] = bson.M{"$exists": true, "$ne": nil}
	}
	return filter
}

// RunTransaction runs fn inside a snapshot-isolated, majority-committed
// transaction. The driver retries fn on transient write conflicts.
func (r *MongoBookingRepo) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoTx{repo: r, sc: sc})
	}, txnOpts)
	return err
}

// mongoTx scopes reads and conditional writes to one session.
type mongoTx struct {
	repo *MongoBookingRepo
	sc   mongo.SessionContext
}

func (t *mongoTx) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	return findBooking(t.sc, t.repo.bookingColl, id)
}

func (t *mongoTx) GetProvider(_ context.Context, providerID string) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	if err := t.repo.providerColl.FindOne(t.sc, bson.M{"providerId": providerID}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching provider %s: %w", providerID, err)
	}
	return &profile, nil
}

func (t *mongoTx) UpdateBookingStatus(_ context.Context, prev *models.Booking, status models.BookingStatus, at time.Time) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": at}}
	return t.conditionalUpdate(t.repo.bookingColl, statusFilter(prev), update, "booking status")
}

func (t *mongoTx) SetCustomerRating(_ context.Context, prev *models.Booking, value int, at time.Time) error {
	update := bson.M{"$set": bson.M{"customerRating": value, "ratedAt": at, "updatedAt": at}}
	return t.conditionalUpdate(t.repo.bookingColl, unratedFilter(prev), update, "customer rating")
}

func (t *mongoTx) SetProviderRating(_ context.Context, prev *models.ProviderProfile, agg models.RatingAggregate, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"rating":      agg.Rating,
		"reviewCount": agg.ReviewCount,
		"ratingTotal": agg.RatingTotal,
		"updatedAt":   at,
	}}
	return t.conditionalUpdate(t.repo.providerColl, reviewCountFilter(prev), update, "provider rating")
}

// The filters below copy the values read in the transaction, so a write
// matches only while the stored document still holds them.

func statusFilter(prev *models.Booking) bson.M {
	return bson.M{"id": prev.ID, "status": prev.Status}
}

// unratedFilter matches a completed booking whose rating is missing or null.
func unratedFilter(prev *models.Booking) bson.M {
	return bson.M{
		"id":             prev.ID,
		"status":         models.BookingCompleted,
		"customerRating": nil,
	}
}

func reviewCountFilter(prev *models.ProviderProfile) bson.M {
	return bson.M{"providerId": prev.ProviderID, "reviewCount": prev.ReviewCount}
}

func (t *mongoTx) conditionalUpdate(coll *mongo.Collection, filter, update bson.M, what string) error {
	res, err := coll.UpdateOne(t.sc, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", what, database.ErrConflict)
	}
	return nil
}
