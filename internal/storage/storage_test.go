package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"alcyxob/coachhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectKey(t *testing.T) {
	key := NewObjectKey("avatars", "u1", "image/png")
	assert.True(t, strings.HasPrefix(key, "avatars/u1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, NewObjectKey("avatars", "u1", "image/png"))
}

func TestValidateImageType(t *testing.T) {
	assert.NoError(t, ValidateImageType("image/jpeg"))
	assert.NoError(t, ValidateImageType("IMAGE/WEBP"))
	assert.Error(t, ValidateImageType("application/pdf"))
}

func TestDisabled(t *testing.T) {
	s := Disabled()
	_, err := s.GeneratePresignedUploadURL(context.Background(), "k", "image/png", 0)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	assert.ErrorIs(t, s.DeleteObject(context.Background(), "k"), ErrStorageDisabled)
}

// Presigning is local computation, no bucket has to exist.
func TestS3Storage_PresignsAgainstCustomEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "avatars",
	}, logger)
	require.NoError(t, err)

	url, err := s.GeneratePresignedDownloadURL(context.Background(), "avatars/u1/a.png", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/avatars/avatars/u1/a.png?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
}
