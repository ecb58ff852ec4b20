package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore keeps uploaded application documents.
type BlobStore interface {
	// Upload stores the content under folder and returns the object path.
	Upload(ctx context.Context, r io.Reader, folder, filename, contentType string) (string, error)
	// DownloadURL returns a URL the object can be fetched from until expires elapses.
	DownloadURL(ctx context.Context, objectPath string, expires time.Duration) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

const (
	BackendCloudinary = "cloudinary"
	BackendFirebase   = "firebase"
)

// objectName builds a collision-free object name that keeps the original
// extension so content type can be inferred on download.
func objectName(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
}

func stripExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

func wrap(op string, err error) error {
	return fmt.Errorf("storage: failed to %s: %w", op, err)
}
