package storage

import (
	"context"
	"io"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// UploadInput describes one media object to store.
type UploadInput struct {
	Bucket      string
	Key         string
	ContentType string
	Body        io.Reader
}

// Service stores user media (avatars, cover images) in remote object storage.
type Service interface {
	// Upload stores the object and returns a publicly addressable URL.
	Upload(ctx context.Context, in UploadInput) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	// GetObjectURL returns a presigned link for direct download.
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
