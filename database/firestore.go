package database

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsFirestoreNotFound reports whether err is Firestore's NotFound status.
func IsFirestoreNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// FirestoreError maps Firestore status errors onto the store sentinels.
func FirestoreError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.FailedPrecondition, codes.Aborted, codes.AlreadyExists:
		return ErrConflict
	}
	return err
}

// PingFirestore issues a cheap read to check the project is reachable.
func PingFirestore(ctx context.Context, client *firestore.Client) error {
	it := client.Collection(ProvidersCollection).Limit(1).Documents(ctx)
	defer it.Stop()
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}
