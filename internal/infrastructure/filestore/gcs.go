package filestore

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/eduflex-backend/pkg/helpers"
)

// GCS stores submission files in a single bucket and returns their public URL.
type GCS struct {
	Client *storage.Client
	Bucket string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket}
}

func (g *GCS) Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if g == nil || g.Client == nil || g.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return helpers.UploadObject(ctx, g.Client, g.Bucket, objectPath, contentType, r)
}
