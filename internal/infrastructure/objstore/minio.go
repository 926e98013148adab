// Package objstore stores attached invoice files in S3-compatible
// object storage.
package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"stockpro/internal/core/apperror"
	"stockpro/pkg/logger"
)

// Config configures the object storage client.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store saves and loads attachment blobs keyed by object name.
type Store struct {
	client *minio.Client
	bucket string
}

// New creates the object storage client and ensures the bucket exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info(ctx, "attachment bucket created", "bucket", cfg.Bucket)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Save uploads one attachment. Saving the same key twice overwrites.
func (s *Store) Save(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("store attachment %s: %w", key, err)
	}

	logger.Info(ctx, "attachment stored", "key", key, "bytes", len(data))
	return nil
}

// Load returns the attachment content and its content type.
func (s *Store) Load(ctx context.Context, key string) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("load attachment %s: %w", key, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, "", apperror.NewNotFound("attachment", key)
		}
		return nil, "", fmt.Errorf("stat attachment %s: %w", key, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("read attachment %s: %w", key, err)
	}
	return data, info.ContentType, nil
}

// Delete removes an attachment. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("delete attachment %s: %w", key, err)
	}
	return nil
}
