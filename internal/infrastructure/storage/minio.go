package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"library-api/internal/config"
)

// MinIOStorage holds imported spreadsheet files for audit.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// ObjectInfo is the subset of object metadata the cleanup job needs.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// NewMinIOStorage initializes the client and ensures the bucket exists.
func NewMinIOStorage(cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStorage{client: client, bucket: cfg.Bucket}, nil
}

// Upload stores a file under the given key.
func (s *MinIOStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		reader,
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}
	return nil
}

// MoveObject relocates an object via copy + remove.
func (s *MinIOStorage) MoveObject(ctx context.Context, fromKey, toKey string) error {
	srcOpts := minio.CopySrcOptions{Bucket: s.bucket, Object: fromKey}
	dstOpts := minio.CopyDestOptions{Bucket: s.bucket, Object: toKey}

	if _, err := s.client.CopyObject(ctx, dstOpts, srcOpts); err != nil {
		return fmt.Errorf("failed to copy object: %w", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, fromKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove old object: %w", err)
	}

	return nil
}

// Delete removes a single object.
func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ListByPrefix lists objects under a prefix. Used by the temp-upload
// cleanup job to find stale files.
func (s *MinIOStorage) ListByPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var infos []ObjectInfo
	for object := range objectsCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		infos = append(infos, ObjectInfo{Key: object.Key, LastModified: object.LastModified})
	}

	return infos, nil
}
