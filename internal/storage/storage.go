// Package storage stores post cover images.
//
// Two providers implement Storage: LocalStorage keeps files on disk and is
// served by the blog itself under /files/, R2Storage keeps them in a
// Cloudflare R2 bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage is a flat key/value store for binary objects.
type Storage interface {
	// Put stores data at key. ErrKeyExists is returned when the key is
	// taken and opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get opens the object at key. The caller must close the reader.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a URL a browser can load the object from. Providers that
	// sign URLs honor expires; public URLs ignore it.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	ContentType string // Detected from the key when empty
	MaxSize     int64  // ErrTooLarge above this many bytes; 0 means no limit
	Overwrite   bool
	Public      bool // Served with a long cache lifetime
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	BasePath string // e.g. "./storage"
	BaseURL  string // e.g. "http://localhost:8080/files"
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the bucket's public domain. Without it every URL is presigned.
	PublicURL string

	// Region defaults to "auto".
	Region string
}

const (
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

// New creates the Storage for the named provider.
func New(provider string, local LocalConfig, r2 R2Config, logger *slog.Logger) (Storage, error) {
	switch provider {
	case ProviderLocal, "":
		return NewLocalStorage(local, logger)
	case ProviderR2:
		return NewR2Storage(r2, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", provider)
	}
}

// =============================================================================
// Keys
// =============================================================================

// CoverKey returns a new key for a post's cover image.
// Format: posts/{postID}/cover/{uuid}{ext}
func CoverKey(postID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("posts/%s/cover/%s%s", postID, uuid.New(), ext)
}

// CoverThumbnailKey returns a new key for a post's cover thumbnail.
// Thumbnails are always JPEG.
// Format: posts/{postID}/cover/{uuid}-thumb.jpg
func CoverThumbnailKey(postID uuid.UUID) string {
	return fmt.Sprintf("posts/%s/cover/%s-thumb.jpg", postID, uuid.New())
}

// validateKey rejects empty keys, absolute keys and path traversal.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
