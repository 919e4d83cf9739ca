package objectstore

import (
	"context"
	"io"
	"strings"
	"testing"

	"fintrack/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidBucket(t *testing.T) {
	for _, bucket := range AllowedBuckets {
		assert.True(t, ValidBucket(bucket), bucket)
	}
	assert.False(t, ValidBucket("secrets"))
	assert.False(t, ValidBucket(""))
}

func TestGenerateName(t *testing.T) {
	t.Run("should keep the extension", func(t *testing.T) {
		name := GenerateName("Receipt.PDF")
		assert.True(t, strings.HasSuffix(name, ".pdf"))
		assert.Len(t, name, 36+len(".pdf"))
	})

	t.Run("should produce unique names", func(t *testing.T) {
		assert.NotEqual(t, GenerateName("a.png"), GenerateName("a.png"))
	})
}

func TestNewFallsBackToMemory(t *testing.T) {
	store, err := New(config.StorageConfig{})
	require.NoError(t, err)
	_, ok := store.(*MemoryStore)
	assert.True(t, ok)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("should round trip an object", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "receipts", "a.txt", strings.NewReader("coffee 4.50"), 11, "text/plain"))

		r, info, err := store.Get(ctx, "receipts", "a.txt")
		require.NoError(t, err)
		defer r.Close()
		data, _ := io.ReadAll(r)
		assert.Equal(t, "coffee 4.50", string(data))
		assert.Equal(t, int64(11), info.Size)
		assert.Equal(t, "text/plain", info.ContentType)
	})

	t.Run("should reject unknown buckets", func(t *testing.T) {
		err := store.Put(ctx, "secrets", "a.txt", strings.NewReader("x"), 1, "text/plain")
		assert.ErrorIs(t, err, ErrInvalidBucket)
	})

	t.Run("should report missing objects", func(t *testing.T) {
		_, _, err := store.Get(ctx, "exports", "none.csv")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "exports", "none.csv"), ErrNotFound)
	})

	t.Run("should delete objects", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "receipts", "a.txt"))
		_, _, err := store.Get(ctx, "receipts", "a.txt")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
