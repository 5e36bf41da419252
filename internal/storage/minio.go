package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"studiodrive/internal/config"
	"studiodrive/internal/domain"
	"studiodrive/internal/domain/repositories"
)

// MinIOStore keeps blobs in a MinIO / S3 compatible bucket
type MinIOStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinIOStore connects to the object store and creates the bucket if it doesn't exist
func NewMinIOStore(ctx context.Context, cfg config.BlobConfig, logger *slog.Logger) (repositories.BlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		logger.Info("created bucket", "bucket", cfg.Bucket)
	}

	return &MinIOStore{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Put uploads content unless an object with the same digest already exists
func (s *MinIOStore) Put(ctx context.Context, content []byte, contentType string) (string, error) {
	key := Key(content)
	name := objectName(key)

	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err == nil {
		s.logger.Debug("blob already stored", "key", key)
		return key, nil
	} else if !isNoSuchKey(err) {
		return "", fmt.Errorf("stat blob: %w", err)
	}

	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put blob: %w", err)
	}

	s.logger.Debug("blob stored", "key", key, "size", humanize.Bytes(uint64(len(content))))
	return key, nil
}

// Open streams the object stored under key
func (s *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	name := objectName(key)

	// GetObject is lazy; stat first so a missing object surfaces here instead of on Read
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat blob: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return obj, nil
}

// Delete removes the object under key. S3 treats a missing object as success.
func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName(key), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
