package export

import (
	"context"
)

// ObjectStore provides an interface for cloud storage operations.
// This interface enables mocking and testing of report uploads.
type ObjectStore interface {
	// Upload writes data to a storage bucket under the given object name.
	Upload(ctx context.Context, bucketName, objectName string, data []byte) error

	// Fetch downloads object bytes from the given storage URI.
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// GCSObjectStore is the concrete implementation of ObjectStore that
// interacts with Google Cloud Storage.
type GCSObjectStore struct{}

// NewGCSObjectStore creates a new instance of GCSObjectStore.
func NewGCSObjectStore() *GCSObjectStore {
	return &GCSObjectStore{}
}

// Upload delegates to the UploadObject function.
func (s *GCSObjectStore) Upload(ctx context.Context, bucketName, objectName string, data []byte) error {
	return UploadObject(ctx, bucketName, objectName, data)
}

// Fetch delegates to the FetchObject function.
func (s *GCSObjectStore) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	return FetchObject(ctx, gcsURI)
}
