package storage

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:            "pos-exports",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Endpoint:          "localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 10 * time.Minute,
	}
}

func TestNewS3ExportStore_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			_, err := NewS3ExportStore(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ExportStore(nil)
		assert.ErrorContains(t, err, "configuration is required")
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := validConfig()
		cfg.PresignExpiration = 0
		store, err := NewS3ExportStore(cfg, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "pos-exports", store.Bucket())
		assert.Equal(t, 15*time.Minute, store.presignExpiration)
	})
}

func TestS3ExportStore_GenerateDownloadURL(t *testing.T) {
	store, err := NewS3ExportStore(validConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("presigns path-style URL", func(t *testing.T) {
		before := time.Now()
		link, expiresAt, err := store.GenerateDownloadURL(ctx, "exports/2024/03/15/sales.csv", 0)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, "http://localhost:9000/pos-exports/exports/2024/03/15/sales.csv?"))
		assert.Contains(t, link, "X-Amz-Signature=")
		assert.Contains(t, link, "X-Amz-Expires=600")
		assert.WithinDuration(t, before.Add(10*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("explicit expiry", func(t *testing.T) {
		link, _, err := store.GenerateDownloadURL(ctx, "a.pdf", time.Minute)
		require.NoError(t, err)
		assert.Contains(t, link, "X-Amz-Expires=60")
	})

	t.Run("empty key", func(t *testing.T) {
		_, _, err := store.GenerateDownloadURL(ctx, "", 0)
		assert.Error(t, err)
	})
}

func TestS3ExportStore_UploadRequiresKey(t *testing.T) {
	store, err := NewS3ExportStore(validConfig())
	require.NoError(t, err)
	assert.Error(t, store.Upload(context.Background(), "", []byte("x"), "text/csv"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "sales.csv", baseName("exports/2024/sales.csv"))
	assert.Equal(t, "sales.csv", baseName("sales.csv"))
}

// Integration tests need a running MinIO or RustFS. Set INTEGRATION_TEST=1
// and the POS_STORAGE_* variables to run them.
func newIntegrationStore(t *testing.T) *S3ExportStore {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=1 and run an S3-compatible server to enable.")
	}
	cfg := &config.StorageConfig{
		Bucket:       "pos-exports-it",
		AccessKey:    envOr("POS_STORAGE_ACCESS_KEY", "minioadmin"),
		SecretKey:    envOr("POS_STORAGE_SECRET_KEY", "minioadmin"),
		Endpoint:     envOr("POS_STORAGE_ENDPOINT", "localhost:9000"),
		UsePathStyle: true,
	}
	store, err := NewS3ExportStore(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NoError(t, store.EnsureBucket(context.Background()))
	return store
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestIntegration_UploadAndDownload(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()
	key := "it/sales_20240301_20240331.csv"
	body := []byte("id,created_at\n")

	require.NoError(t, store.Upload(ctx, key, body, "text/csv"))
	link, _, err := store.GenerateDownloadURL(ctx, key, time.Minute)
	require.NoError(t, err)

	resp, err := http.Get(link)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "sales_20240301_20240331.csv")
}
