package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pymeboard/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		Enabled:      true,
		Endpoint:     "localhost:9000",
		Bucket:       "pymeboard-exports",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	}
}

func TestNewS3ArchiveStorage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing bucket", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3ArchiveStorage(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.SecretKey = ""
		_, err := NewS3ArchiveStorage(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key")
	})

	t.Run("defaults", func(t *testing.T) {
		s, err := NewS3ArchiveStorage(ctx, testStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, "pymeboard-exports", s.Bucket())
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})

	t.Run("options", func(t *testing.T) {
		s, err := NewS3ArchiveStorage(ctx, testStorageConfig(),
			WithPresignExpiration(time.Hour), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestS3ArchiveStorage_DownloadURL(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3ArchiveStorage(ctx, testStorageConfig())
	require.NoError(t, err)

	t.Run("empty key", func(t *testing.T) {
		url, _, err := s.DownloadURL(ctx, "")
		assert.ErrorIs(t, err, errEmptyKey)
		assert.Empty(t, url)
	})

	t.Run("presigns against the endpoint", func(t *testing.T) {
		url, expiresAt, err := s.DownloadURL(ctx, "exports/org/clientes_07-03-2024.csv")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "http://localhost:9000/pymeboard-exports/exports/org/"))
		assert.Contains(t, url, "X-Amz-Signature=")
		assert.True(t, expiresAt.After(time.Now()))
		assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
	})
}

func TestS3ArchiveStorage_PutRequiresKey(t *testing.T) {
	s, err := NewS3ArchiveStorage(context.Background(), testStorageConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, s.Put(context.Background(), "", []byte("x"), "text/csv"), errEmptyKey)
}
