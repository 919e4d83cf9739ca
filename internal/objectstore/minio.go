package objectstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"fintrack/internal/config"
	"fintrack/internal/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type MinioStore struct {
	client *minio.Client
	region string

	mu      sync.Mutex
	ensured map[string]bool
}

// New returns a MinIO-backed store, or an in-memory one when no endpoint is
// configured.
func New(cfg config.StorageConfig) (Store, error) {
	if cfg.Endpoint == "" {
		logger.Log.Info("no object storage endpoint configured, using in-memory store")
		return NewMemoryStore(), nil
	}
	return NewMinioStore(cfg)
}

func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioStore{client: client, region: cfg.Region, ensured: make(map[string]bool)}, nil
}

// ensureBucket creates bucket on first use.
func (s *MinioStore) ensureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured[bucket] {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		logger.Log.Info("created bucket", zap.String("bucket", bucket))
	}
	s.ensured[bucket] = true
	return nil
}

func (s *MinioStore) Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error {
	if !ValidBucket(bucket) {
		return ErrInvalidBucket
	}
	if err := s.ensureBucket(ctx, bucket); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, name, err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, bucket, name string) (io.ReadCloser, ObjectInfo, error) {
	if !ValidBucket(bucket) {
		return nil, ObjectInfo{}, ErrInvalidBucket
	}
	obj, err := s.client.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, translate(err)
	}
	// GetObject is lazy; Stat surfaces a missing key
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, translate(err)
	}
	return obj, ObjectInfo{Name: stat.Key, Size: stat.Size, ContentType: stat.ContentType}, nil
}

func (s *MinioStore) Delete(ctx context.Context, bucket, name string) error {
	if !ValidBucket(bucket) {
		return ErrInvalidBucket
	}
	if _, err := s.client.StatObject(ctx, bucket, name, minio.StatObjectOptions{}); err != nil {
		return translate(err)
	}
	if err := s.client.RemoveObject(ctx, bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, name, err)
	}
	return nil
}

func translate(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound
	}
	return err
}
