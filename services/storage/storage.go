package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"nestly/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryBlobStore stores objects as Cloudinary assets. The object path is
// the asset public ID plus the original extension.
type CloudinaryBlobStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryBlobStore(cld *cloudinary.Cloudinary) *CloudinaryBlobStore {
	return &CloudinaryBlobStore{cld: cld}
}

func (s *CloudinaryBlobStore) Upload(ctx context.Context, r io.Reader, folder, filename, contentType string) (string, error) {
	objectPath := objectName(folder, filename)
	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   path.Dir(objectPath),
		PublicID: path.Base(stripExt(objectPath)),
	})
	if err != nil {
		return "", wrap("upload file", err)
	}
	if result.PublicID == "" {
		return "", fmt.Errorf("storage: no public ID returned")
	}
	return result.PublicID + path.Ext(objectPath), nil
}

// DownloadURL returns the delivery URL of the asset. Cloudinary delivery URLs
// do not expire, so expires is ignored.
func (s *CloudinaryBlobStore) DownloadURL(ctx context.Context, objectPath string, expires time.Duration) (string, error) {
	a, err := s.cld.Image(stripExt(objectPath))
	if err != nil {
		return "", wrap("get asset", err)
	}
	url, err := a.String()
	if err != nil {
		return "", wrap("get URL string", err)
	}
	return url, nil
}

func (s *CloudinaryBlobStore) Delete(ctx context.Context, objectPath string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: stripExt(objectPath)}); err != nil {
		return wrap("delete file", err)
	}
	return nil
}

// NewBlobStore builds the configured blob backend.
func NewBlobStore(backend string) (BlobStore, error) {
	switch backend {
	case BackendFirebase:
		return NewFirebaseBlobStore()
	case BackendCloudinary, "":
		cld, err := utils.NewCloudinary()
		if err != nil {
			return nil, err
		}
		return NewCloudinaryBlobStore(cld), nil
	default:
		return nil, fmt.Errorf("storage: unknown blob backend %q", backend)
	}
}
