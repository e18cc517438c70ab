package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/secfilingflow/internal/gcp"
)

// DefaultInlineLimit keeps a section record safely below Firestore's 1 MiB
// document cap.
const DefaultInlineLimit = 900_000

// ContentArchive holds section bodies that are too large to inline.
type ContentArchive interface {
	// Put stores content and returns a URI that Get resolves.
	Put(ctx context.Context, filingID, sessionID, sectionID, content string) (string, error)
	Get(ctx context.Context, uri string) (string, error)
	// Delete removes an archived body. A missing object is not an error.
	Delete(ctx context.Context, uri string) error
}

// GCSArchive stores section bodies as objects in a Cloud Storage bucket.
type GCSArchive struct {
	client *storage.Client
	bucket string
}

// NewGCSArchive creates an archive writing to bucket.
func NewGCSArchive(client *storage.Client, bucket string) (*GCSArchive, error) {
	if client == nil || bucket == "" {
		return nil, fmt.Errorf("storage client and bucket must be provided")
	}
	return &GCSArchive{client: client, bucket: bucket}, nil
}

// ObjectName is the object path of one section body. Sessions are immutable,
// so the name identifies the content.
func ObjectName(filingID, sessionID, sectionID string) string {
	return fmt.Sprintf("filings/%s/sessions/%s/%s.txt", filingID, sessionID, sectionID)
}

// Put writes content unless the object already exists.
func (a *GCSArchive) Put(ctx context.Context, filingID, sessionID, sectionID, content string) (string, error) {
	objectName := ObjectName(filingID, sessionID, sectionID)
	if err := gcp.SaveToGCSAtomically(ctx, a.client.Bucket(a.bucket), objectName, content); err != nil {
		return "", fmt.Errorf("failed to archive section %s: %w", sectionID, err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}

// Get reads an archived body.
func (a *GCSArchive) Get(ctx context.Context, uri string) (string, error) {
	bucket, object, err := gcp.ParseGCSURI(uri)
	if err != nil {
		return "", err
	}
	return gcp.ReadGCSObject(ctx, a.client.Bucket(bucket), object)
}

// Delete removes an archived body.
func (a *GCSArchive) Delete(ctx context.Context, uri string) error {
	bucket, object, err := gcp.ParseGCSURI(uri)
	if err != nil {
		return err
	}
	return gcp.DeleteGCSObject(ctx, a.client.Bucket(bucket), object)
}
