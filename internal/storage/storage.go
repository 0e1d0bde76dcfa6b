package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrStorageDisabled is returned when no bucket is configured.
var ErrStorageDisabled = errors.New("file storage is not configured")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// NewObjectKey returns a fresh key under prefix/owner, keeping the extension
// implied by contentType so browsers render the object correctly.
func NewObjectKey(prefix, owner, contentType string) string {
	return path.Join(prefix, owner, uuid.NewString()+extensionFor(contentType))
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ""
}

// ValidateImageType rejects anything that is not an image we can display.
func ValidateImageType(contentType string) error {
	if extensionFor(contentType) == "" {
		return fmt.Errorf("unsupported content type %q", contentType)
	}
	return nil
}

type disabled struct{}

// Disabled is the FileStorage used when no bucket is configured. Every call
// fails with ErrStorageDisabled.
func Disabled() FileStorage { return disabled{} }

func (disabled) GeneratePresignedUploadURL(context.Context, string, string, time.Duration) (string, error) {
	return "", ErrStorageDisabled
}

func (disabled) GeneratePresignedDownloadURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrStorageDisabled
}

func (disabled) DeleteObject(context.Context, string) error { return ErrStorageDisabled }
