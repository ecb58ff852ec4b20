package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nestly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const maxStreamReopen = 3

// Watch follows the bookings change stream and re-runs q whenever a matching
// document changes. A broken stream is reopened from its last resume token.
func (r *MongoBookingRepo) Watch(ctx context.Context, q models.BookingQuery) (Subscription, error) {
	sub := &mongoSubscription{repo: r, query: q}
	if err := sub.open(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

type mongoSubscription struct {
	repo   *MongoBookingRepo
	query  models.BookingQuery
	stream *mongo.ChangeStream
	token  bson.Raw
	primed bool
}

func (s *mongoSubscription) pipeline() mongo.Pipeline {
	match := bson.M{}
	for k, v := range queryFilter(s.query) {
		match["fullDocument."+k] = v
	}
	return mongo.Pipeline{{{Key: "$match", Value: match}}}
}

func (s *mongoSubscription) open(ctx context.Context) error {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if s.token != nil {
		opts.SetResumeAfter(s.token)
	}
	stream, err := s.repo.bookingColl.Watch(ctx, s.pipeline(), opts)
	if err != nil {
		return fmt.Errorf("failed to open booking change stream: %w", err)
	}
	s.stream = stream
	return nil
}

func (s *mongoSubscription) Next(ctx context.Context) ([]models.Booking, error) {
	if !s.primed {
		s.primed = true
		return s.repo.Find(ctx, s.query)
	}

	for attempt := 0; ; attempt++ {
		if s.stream == nil {
			if err := s.open(ctx); err != nil {
				return nil, err
			}
		}
		stream := s.stream
		if stream.Next(ctx) {
			s.token = stream.ResumeToken()
			return s.repo.Find(ctx, s.query)
		}

		err := stream.Err()
		_ = stream.Close(context.Background())
		s.stream = nil
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt >= maxStreamReopen {
			return nil, fmt.Errorf("booking change stream closed: %w", errors.Join(err, errors.New("reopen attempts exhausted")))
		}
		zap.L().Warn("Reopening booking change stream", zap.Error(err), zap.Int("attempt", attempt+1))
		select {
		case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *mongoSubscription) Stop() {
	if s.stream != nil {
		_ = s.stream.Close(context.Background())
		s.stream = nil
	}
}
