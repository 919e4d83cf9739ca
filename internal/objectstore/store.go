// Package objectstore keeps uploaded files (receipts, goal images, exports) in
// S3-compatible storage.
package objectstore

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrInvalidBucket = errors.New("invalid bucket name")
)

// AllowedBuckets lists the buckets clients may address.
var AllowedBuckets = []string{"receipts", "goal-images", "user-profiles", "exports", "backups"}

func ValidBucket(bucket string) bool {
	for _, b := range AllowedBuckets {
		if b == bucket {
			return true
		}
	}
	return false
}

// GenerateName returns a random object name keeping the original extension.
func GenerateName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}

type ObjectInfo struct {
	Name        string
	Size        int64
	ContentType string
}

type Store interface {
	Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, name string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, bucket, name string) error
}
