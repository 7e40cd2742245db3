package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := NewLocalStorage(LocalConfig{BasePath: dir, BaseURL: "http://localhost:8080/files/"}, logger)
	require.NoError(t, err)
	return s, dir
}

func TestLocalStorage_PutGetDelete(t *testing.T) {
	s, dir := newTestLocalStorage(t)
	ctx := context.Background()
	key := "posts/abc/cover/one.png"

	require.NoError(t, s.Put(ctx, key, strings.NewReader("image-bytes"), PutOptions{ContentType: "image/png"}))

	_, err := os.Stat(filepath.Join(dir, "posts", "abc", "cover", "one.png"))
	require.NoError(t, err)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, info, err := s.Get(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(body))
	assert.Equal(t, int64(len("image-bytes")), info.Size)
	assert.Equal(t, "image/png", info.ContentType)

	require.NoError(t, s.Delete(ctx, key))
	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is not an error.
	require.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_PutRespectsOverwrite(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()
	key := "posts/abc/cover/two.jpg"

	require.NoError(t, s.Put(ctx, key, strings.NewReader("first"), PutOptions{}))

	err := s.Put(ctx, key, strings.NewReader("second"), PutOptions{})
	require.ErrorIs(t, err, ErrKeyExists)

	require.NoError(t, s.Put(ctx, key, strings.NewReader("third"), PutOptions{Overwrite: true}))
	rc, _, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "third", string(body))
}

func TestLocalStorage_PutTooLarge(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()
	key := "posts/abc/cover/big.jpg"

	err := s.Put(ctx, key, bytes.NewReader(make([]byte, 11)), PutOptions{MaxSize: 10})
	require.Error(t, err)
	assert.True(t, IsTooLarge(err))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists, "oversized upload must not leave a file behind")
}

func TestLocalStorage_GetMissing(t *testing.T) {
	s, _ := newTestLocalStorage(t)

	_, _, err := s.Get(context.Background(), "posts/missing.jpg")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Get", se.Op)
	assert.Equal(t, "posts/missing.jpg", se.Key)
}

func TestLocalStorage_InvalidKeys(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "posts/../../secret", "/abs/path"} {
		t.Run(key, func(t *testing.T) {
			err := s.Put(ctx, key, strings.NewReader("x"), PutOptions{})
			assert.True(t, IsInvalidKey(err), "put %q", key)

			_, err = s.URL(ctx, key, 0)
			assert.True(t, IsInvalidKey(err), "url %q", key)
		})
	}
}

func TestLocalStorage_URL(t *testing.T) {
	s, _ := newTestLocalStorage(t)

	url, err := s.URL(context.Background(), "posts/abc/cover/one.png", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/posts/abc/cover/one.png", url)
}

func TestCoverKeys(t *testing.T) {
	postID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	key := CoverKey(postID, "Holiday.PNG")
	assert.True(t, strings.HasPrefix(key, "posts/123e4567-e89b-12d3-a456-426614174000/cover/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, CoverKey(postID, "Holiday.PNG"), "keys are unique")

	thumb := CoverThumbnailKey(postID)
	assert.True(t, strings.HasSuffix(thumb, "-thumb.jpg"))
	assert.NoError(t, validateKey(thumb))
}

func TestContentTypes(t *testing.T) {
	assert.Equal(t, "image/png", DetectContentType("image/png", "x.jpg", nil))
	assert.Equal(t, "image/jpeg", DetectContentType("", "photo.JPG", nil))
	assert.Equal(t, "image/png", DetectContentType("", "", bytes.NewReader([]byte("\x89PNG\r\n\x1a\n0000"))))
	assert.Equal(t, "application/octet-stream", DetectContentType("", "", nil))

	assert.True(t, IsAllowedImageType("image/jpeg"))
	assert.True(t, IsAllowedImageType("IMAGE/PNG; charset=binary"))
	assert.True(t, IsAllowedImageType("image/webp"))
	assert.False(t, IsAllowedImageType("image/svg+xml"))
	assert.False(t, IsAllowedImageType("application/pdf"))
}
