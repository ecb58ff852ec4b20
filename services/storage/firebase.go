package storage

import (
	"context"
	"io"
	"time"

	"nestly/config"
	"nestly/utils"

	"cloud.google.com/go/storage"
)

// FirebaseBlobStore stores objects in the project's Firebase Storage bucket.
type FirebaseBlobStore struct {
	bucket *storage.BucketHandle
}

func NewFirebaseBlobStore() (*FirebaseBlobStore, error) {
	bucket, err := utils.GetFirebaseStorage().Bucket(config.AppConfig.FirebaseBucket)
	if err != nil {
		return nil, wrap("open bucket", err)
	}
	return &FirebaseBlobStore{bucket: bucket}, nil
}

func (s *FirebaseBlobStore) Upload(ctx context.Context, r io.Reader, folder, filename, contentType string) (string, error) {
	objectPath := objectName(folder, filename)
	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ObjectAttrs.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", wrap("copy file to storage", err)
	}
	if err := w.Close(); err != nil {
		return "", wrap("close writer", err)
	}
	return objectPath, nil
}

// DownloadURL signs a short-lived GET URL. Documents are never public.
func (s *FirebaseBlobStore) DownloadURL(ctx context.Context, objectPath string, expires time.Duration) (string, error) {
	url, err := s.bucket.SignedURL(objectPath, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(expires),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", wrap("generate signed URL", err)
	}
	return url, nil
}

func (s *FirebaseBlobStore) Delete(ctx context.Context, objectPath string) error {
	if err := s.bucket.Object(objectPath).Delete(ctx); err != nil {
		return wrap("delete file", err)
	}
	return nil
}
